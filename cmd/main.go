package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ailablog/config"
	"ailablog/internal/events"
	"ailablog/internal/mail"
	"ailablog/internal/router"
	"ailablog/internal/storage"
	"ailablog/model"
	myvalidator "ailablog/internal/validator"
)

func main() {
	// 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../"
	}
	config.InitConfig(configPath)
	config.InitRedis()

	// 初始化数据库
	db, err := gorm.Open(mysql.Open(config.GlobalConfig.MySQL.DSN), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// 自动迁移：外键级联规则在这里落到库级
	if err := db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Tag{},
		&model.Comment{},
		&model.PostLike{},
		&model.CommentLike{},
	); err != nil {
		panic(err)
	}
	// 搜索用的全文索引（已存在则忽略报错）
	if err := db.Exec("CREATE FULLTEXT INDEX idx_posts_fulltext ON posts(title, content)").Error; err != nil {
		log.Printf("fulltext index: %v", err)
	}

	// 注册自定义校验器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("category", myvalidator.IsCategory); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("role", myvalidator.IsRole); err != nil {
			panic(err)
		}
	}

	// 外部协作方
	opts := router.Options{
		Store:   storage.NewImageStore(config.GlobalConfig.Upload.Dir),
		Mailer:  mail.NewMailer(config.GlobalConfig.SMTP),
		Metrics: true,
	}
	if len(config.GlobalConfig.Kafka.Brokers) > 0 {
		producer := events.NewProducer(config.GlobalConfig.Kafka.Brokers, config.GlobalConfig.Kafka.Topic)
		defer producer.Close()
		opts.Producer = producer
	}

	r := router.Setup(db, config.RedisClient, opts)

	port := config.GlobalConfig.Server.Port
	if port == "" {
		port = "8080"
	}
	log.Printf("listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

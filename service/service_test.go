package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"ailablog/config"
	"ailablog/dao"
	"ailablog/model"
	"ailablog/utils"
)

// setupTestDB opens an in-memory sqlite database with foreign keys enabled
// so the cascade rules behave like the production schema.
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to access sql.DB: %v", err)
	}
	// 单连接，保证 PRAGMA 对所有后续语句生效
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Post{},
		&model.Tag{},
		&model.Comment{},
		&model.PostLike{},
		&model.CommentLike{},
	); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

func setTestConfig() {
	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{
			Secret:        "test-secret",
			AccessExpire:  900,
			RefreshExpire: 3600,
			ResetExpire:   300,
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, username, email, role string) *model.User {
	hash, err := utils.HashPassword("Passw0rd!")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	user := &model.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func newPostService(db *gorm.DB) *PostService {
	return NewPostService(dao.NewPostDAO(db), dao.NewCommentDAO(db), dao.NewLikeDAO(db), nil, nil)
}

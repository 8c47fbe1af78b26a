// Package router assembles DAOs, services and HTTP handlers into a gin engine.
// cmd/main.go and the handler tests share this wiring.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	v1 "ailablog/api/v1"
	"ailablog/dao"
	"ailablog/internal/auth"
	"ailablog/internal/events"
	"ailablog/internal/mail"
	"ailablog/internal/storage"
	"ailablog/middleware"
	"ailablog/service"
)

// Options 外部协作方，均可为 nil（对应功能降级关闭）
type Options struct {
	Store    *storage.ImageStore
	Mailer   *mail.Mailer
	Producer *events.Producer
	Metrics  bool
}

// Setup wires the full API surface. rdb may be nil, in which case sessions,
// blacklist checks and rate limiting are disabled (test setups).
func Setup(db *gorm.DB, rdb *redis.Client, opts Options) *gin.Engine {
	userDAO := dao.NewUserDAO(db)
	postDAO := dao.NewPostDAO(db)
	commentDAO := dao.NewCommentDAO(db)
	likeDAO := dao.NewLikeDAO(db)

	var session *auth.SessionManager
	if rdb != nil {
		session = auth.NewSessionManager(rdb)
	}

	userService := service.NewUserService(userDAO, session, opts.Mailer, opts.Store)
	postService := service.NewPostService(postDAO, commentDAO, likeDAO, opts.Store, opts.Producer)
	commentService := service.NewCommentService(commentDAO, postDAO)
	likeService := service.NewLikeService(likeDAO, postDAO, commentDAO)

	userAPI := v1.NewUserAPI(userService, postService)
	postAPI := v1.NewPostAPI(postService, userService)
	commentAPI := v1.NewCommentAPI(commentService, userService)
	likeAPI := v1.NewLikeAPI(likeService)

	r := gin.Default()
	if opts.Metrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// 公共路由
	public := r.Group("/api/v1")
	{
		if rdb != nil {
			public.POST("/users/login", middleware.RateLimiter(rdb, "login", 10, time.Minute), userAPI.Login)
			public.POST("/users/reset/request", middleware.RateLimiter(rdb, "reset", 5, time.Minute), userAPI.RequestReset)
		} else {
			public.POST("/users/login", userAPI.Login)
			public.POST("/users/reset/request", userAPI.RequestReset)
		}
		public.POST("/users/register", userAPI.Register)
		public.POST("/users/refresh", userAPI.RefreshToken)
		public.POST("/users/logout", userAPI.Logout)
		public.POST("/users/reset/confirm", userAPI.ConfirmReset)
		public.GET("/users/:username/posts", userAPI.Posts)

		public.GET("/posts", postAPI.List)
		public.GET("/posts/search", postAPI.Search)
		// 详情页匿名可读；带 token 时用于 liked 标记
		public.GET("/posts/:slug", middleware.OptionalAuth(session), postAPI.Get)
	}

	// 登录态路由
	authed := r.Group("/api/v1")
	authed.Use(middleware.AuthMiddleware(session))
	{
		authed.PUT("/users/profile", userAPI.UpdateProfile)
		authed.POST("/users/profile/avatar", userAPI.UpdateAvatar)
		authed.DELETE("/users/:username", userAPI.Delete)

		authed.POST("/posts", postAPI.Create)
		authed.PUT("/posts/:slug", postAPI.Update)
		authed.DELETE("/posts/:slug", postAPI.Delete)
		authed.POST("/posts/:slug/tags", postAPI.AddTags)

		authed.POST("/posts/:slug/comments", commentAPI.Add)
		authed.PUT("/comments/:id", commentAPI.Update)
		authed.DELETE("/comments/:id", commentAPI.Delete)

		authed.POST("/posts/:slug/like", likeAPI.TogglePost)
		authed.POST("/comments/:id/like", likeAPI.ToggleComment)
	}

	return r
}

package v1

import (
	"net/http"
	"strings"
	"time"

	"ailablog/api/v1/request"
	"ailablog/config"
	"ailablog/dao"
	"ailablog/internal/auth"
	"ailablog/internal/metrics"
	"ailablog/model"
	"ailablog/service"

	"github.com/gin-gonic/gin"
)

// UserAPI exposes HTTP handlers for the account lifecycle: registration,
// login/logout, token rotation, profile and password reset.
// UserAPI 聚合了所有账号相关的 HTTP Handler。
type UserAPI struct {
	service *service.UserService
	posts   *service.PostService
}

// NewUserAPI wires the service layer into the HTTP handlers.
func NewUserAPI(s *service.UserService, posts *service.PostService) *UserAPI {
	return &UserAPI{service: s, posts: posts}
}

// Register handles new account creation.
func (u *UserAPI) Register(c *gin.Context) {
	var req request.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncRegister("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	if err := u.service.Register(user); err != nil {
		metrics.IncRegister("conflict")
		writeServiceError(c, err)
		return
	}
	metrics.IncRegister("success")
	c.JSON(http.StatusOK, gin.H{"message": "registered, please login", "id": user.ID})
}

// Login validates user credentials and returns a new token pair.
func (u *UserAPI) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncLogin("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	device := c.GetHeader("X-Device")
	access, refresh, err := u.service.Login(req.Email, req.Password, device)
	if err != nil {
		metrics.IncLogin("unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	metrics.IncLogin("success")
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// RefreshToken 验证 refresh token，执行 rotation 并返回新的 token 对。
func (u *UserAPI) RefreshToken(c *gin.Context) {
	var req request.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	device := c.GetHeader("X-Device")
	access, refresh, err := u.service.RotateRefreshToken(req.RefreshToken, device)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

// Logout 支持使用 Access Token 或 Refresh Token 注销，并记录 last_seen
func (u *UserAPI) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

	// 情况 1：Authorization 携带有效的 Access Token
	claims, err := auth.ParseToken(tokenStr)
	if err == nil {
		if u.service.Session != nil {
			if err := u.service.Session.AddBlackList(tokenStr,
				time.Duration(config.GlobalConfig.JWT.AccessExpire)*time.Second); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "blacklist failed"})
				return
			}
			_ = u.service.Session.DeleteRefreshToken(claims.UserID, claims.Device)
		}
		u.service.TouchLastSeen(claims.UserID)
		c.JSON(http.StatusOK, gin.H{"message": "logout success"})
		return
	}

	// 情况 2：access 已失效，宽松解析后按 Refresh Token 处理
	claims, err = auth.ParseTokenAllowExpired(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if u.service.Session != nil {
		stored, err := u.service.Session.GetRefreshToken(claims.UserID, claims.Device)
		if err != nil || stored == "" || stored != tokenStr {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh invalid or expired"})
			return
		}
		if err := u.service.Session.AddBlackList(tokenStr,
			time.Duration(config.GlobalConfig.JWT.RefreshExpire)*time.Second); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "blacklist failed"})
			return
		}
		_ = u.service.Session.DeleteRefreshToken(claims.UserID, claims.Device)
	}

	u.service.TouchLastSeen(claims.UserID)
	c.JSON(http.StatusOK, gin.H{"message": "logout success"})
}

// RequestReset 发起密码重置。无论邮箱是否存在都返回同一响应。
func (u *UserAPI) RequestReset(c *gin.Context) {
	var req request.ResetRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncPasswordReset("request", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u.service.RequestPasswordReset(req.Email)
	metrics.IncPasswordReset("request", "accepted")
	c.JSON(http.StatusOK, gin.H{"message": "password recovery instructions were sent if the email is registered"})
}

// ConfirmReset 校验重置 token 并更新密码。失败不区分原因。
func (u *UserAPI) ConfirmReset(c *gin.Context) {
	var req request.ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncPasswordReset("confirm", "bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := u.service.ResetPassword(req.Token, req.Password); err != nil {
		metrics.IncPasswordReset("confirm", "rejected")
		writeServiceError(c, err)
		return
	}
	metrics.IncPasswordReset("confirm", "success")
	c.JSON(http.StatusOK, gin.H{"message": "password updated, you can login"})
}

// UpdateProfile 修改用户名/邮箱
func (u *UserAPI) UpdateProfile(c *gin.Context) {
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := u.service.UpdateProfile(currentUserID(c), req.Username, req.Email)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateAvatar 上传并替换头像（multipart 字段 "picture"）
func (u *UserAPI) UpdateAvatar(c *gin.Context) {
	file, err := c.FormFile("picture")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing picture"})
		return
	}
	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	user, err := u.service.UpdateAvatar(currentUserID(c), file.Filename, src)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete 管理员删除普通账号
func (u *UserAPI) Delete(c *gin.Context) {
	acting, err := u.service.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := u.service.DeleteUser(acting, c.Param("username")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

// Posts 某用户的文章列表，分页（默认每页 3 条，与前端一致）
func (u *UserAPI) Posts(c *gin.Context) {
	user, err := u.service.GetByUsername(c.Param("username"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", service.DefaultPerPage)
	pageData, err := u.posts.List(page, perPage, dao.ListFilter{UserID: user.ID})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "posts": pageData})
}

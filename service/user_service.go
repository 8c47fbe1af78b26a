package service

import (
	"errors"
	"io"
	"log"
	"time"

	"ailablog/config"
	"ailablog/dao"
	"ailablog/internal/auth"
	"ailablog/internal/mail"
	"ailablog/internal/storage"
	"ailablog/model"
	"ailablog/utils"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// UserService bundles the DAO, session storage, mail delivery and file
// storage used by the account workflows.
type UserService struct {
	dao     *dao.UserDAO
	Session *auth.SessionManager // nil 时跳过 refresh token 存储（测试场景）
	mailer  *mail.Mailer
	store   *storage.ImageStore
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(userDAO *dao.UserDAO, session *auth.SessionManager, mailer *mail.Mailer, store *storage.ImageStore) *UserService {
	return &UserService{dao: userDAO, Session: session, mailer: mailer, store: store}
}

// Register persists a freshly created user after hashing the password.
// 用户名与邮箱的冲突分别报错；并发窗口内的重复键兜底为 ErrUserExists。
func (s *UserService) Register(user *model.User) error {
	if _, err := s.dao.GetByUsername(user.Username); err == nil {
		return ErrUsernameTaken
	}
	if _, err := s.dao.GetByEmail(user.Email); err == nil {
		return ErrEmailTaken
	}

	hashed, err := utils.HashPassword(user.Password)
	if err != nil {
		return err
	}
	user.Password = hashed
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	if err := s.dao.CreateUser(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserExists
		}
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// Login handles email/password authentication and issues a token pair.
func (s *UserService) Login(email, password, device string) (string, string, error) {
	user, err := s.dao.GetByEmail(email)
	if err != nil || user.ID == 0 {
		return "", "", ErrInvalidCredentials
	}

	// 校验密码
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID, device)
	if err != nil {
		return "", "", err
	}

	// 保存 Refresh Token 到 Redis
	if s.Session != nil {
		ttl := time.Duration(config.GlobalConfig.JWT.RefreshExpire) * time.Second
		if err := s.Session.SaveRefreshToken(user.ID, device, refreshToken, ttl); err != nil {
			return "", "", err
		}
	}

	return accessToken, refreshToken, nil
}

// RotateRefreshToken 校验 refresh token、执行黑名单写入，并颁发新的 token 对。
func (s *UserService) RotateRefreshToken(refreshToken, headerDevice string) (string, string, error) {
	if refreshToken == "" {
		return "", "", errors.New("missing refresh token")
	}

	claims, err := auth.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("refresh token invalid")
	}

	// 客户端若提供 X-Device，需与 token claims 匹配
	if headerDevice != "" && headerDevice != claims.Device {
		return "", "", errors.New("device mismatch")
	}

	if s.Session != nil {
		stored, err := s.Session.GetRefreshToken(claims.UserID, claims.Device)
		if err != nil || stored != refreshToken {
			return "", "", errors.New("refresh token expired or rotated")
		}
	}

	accessToken, newRefresh, err := auth.GenerateTokens(claims.UserID, claims.Device)
	if err != nil {
		return "", "", err
	}

	if s.Session != nil {
		ttl := time.Duration(config.GlobalConfig.JWT.RefreshExpire) * time.Second
		if err := s.Session.SaveRefreshToken(claims.UserID, claims.Device, newRefresh, ttl); err != nil {
			return "", "", err
		}
		// 旧 refresh token 加入黑名单，防止重放
		_ = s.Session.AddBlackList(refreshToken, ttl)
	}

	return accessToken, newRefresh, nil
}

// TouchLastSeen 注销时记录最后在线时间
func (s *UserService) TouchLastSeen(userID uint64) {
	user, err := s.dao.GetByID(userID)
	if err != nil {
		return
	}
	now := time.Now()
	user.LastSeen = &now
	if err := s.dao.Save(user); err != nil {
		log.Printf("touch last_seen failed for user %d: %v", userID, err)
	}
}

// GetByID 取当前用户
func (s *UserService) GetByID(id uint64) (*model.User, error) {
	user, err := s.dao.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername 按用户名取用户
func (s *UserService) GetByUsername(username string) (*model.User, error) {
	user, err := s.dao.GetByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile 更新用户名/邮箱。改名会同步移动用户的图片目录，
// 但不回写历史评论的署名。
func (s *UserService) UpdateProfile(actingID uint64, username, email string) (*model.User, error) {
	user, err := s.GetByID(actingID)
	if err != nil {
		return nil, err
	}

	if username != user.Username {
		if _, err := s.dao.GetByUsername(username); err == nil {
			return nil, ErrUsernameTaken
		}
		if s.store != nil {
			if err := s.store.Rename(user.Username, username); err != nil {
				log.Printf("rename upload dir %s -> %s failed: %v", user.Username, username, err)
			}
		}
		user.Username = username
	}
	if email != user.Email {
		if _, err := s.dao.GetByEmail(email); err == nil {
			return nil, ErrEmailTaken
		}
		user.Email = email
	}
	if err := s.dao.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAvatar 存储新头像并替换引用。旧文件不保证清理。
func (s *UserService) UpdateAvatar(actingID uint64, filename string, r io.Reader) (*model.User, error) {
	user, err := s.GetByID(actingID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.SaveAvatar(user.Username, filename, r)
	if err != nil {
		return nil, err
	}
	user.Avatar = stored
	if err := s.dao.Save(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser 管理员删除普通账号。admin 账号不可删除。
// 关联的文章/评论/点赞由外键级联清理，上传目录一并移除。
func (s *UserService) DeleteUser(acting *model.User, username string) error {
	if !acting.IsAdmin() {
		return ErrPermissionDenied
	}
	user, err := s.GetByUsername(username)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return ErrAdminUndeletable
	}
	if err := s.dao.Delete(user); err != nil {
		return err
	}
	if s.store != nil {
		if err := s.store.RemoveAll(user.Username); err != nil {
			log.Printf("remove upload dir for %s failed: %v", user.Username, err)
		}
	}
	return nil
}

// RequestPasswordReset issues a reset token for the account behind the email
// and mails it. Whether the email exists is not revealed to the caller, and
// mail delivery failures are logged, never surfaced.
func (s *UserService) RequestPasswordReset(email string) {
	user, err := s.dao.GetByEmail(email)
	if err != nil {
		return
	}
	token, err := auth.GenerateResetToken(user.ID)
	if err != nil {
		log.Printf("reset token generation failed: %v", err)
		return
	}
	if s.mailer == nil {
		return
	}
	ttl := time.Duration(config.GlobalConfig.JWT.ResetExpire) * time.Second
	if err := s.mailer.SendResetEmail(user.Email, token, ttl); err != nil {
		log.Printf("reset mail to %s failed: %v", user.Email, err)
	}
}

// ResetPassword verifies the token and replaces the password hash.
// 无效与过期的 token 一律等同"查无此人"。
func (s *UserService) ResetPassword(token, newPassword string) error {
	userID, err := auth.ParseResetToken(token)
	if err != nil {
		return ErrInvalidResetToken
	}
	user, err := s.dao.GetByID(userID)
	if err != nil {
		return ErrInvalidResetToken
	}
	hashed, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.dao.UpdatePassword(user.ID, hashed)
}

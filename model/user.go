package model

import "time"

// 用户角色，固定枚举
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 用户模型
type User struct {
	ID        uint64     `gorm:"primarykey" json:"id"`
	Username  string     `gorm:"uniqueIndex;not null;size:20" json:"username"`
	Email     string     `gorm:"uniqueIndex;not null;size:120" json:"email"`
	Password  string     `gorm:"not null;size:100" json:"-"` // bcrypt 哈希，永不明文
	Avatar    string     `gorm:"size:64" json:"avatar"`
	Role      string     `gorm:"not null;size:20;default:user;index" json:"role"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// 删除用户时级联清理其内容
	Posts        []Post        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Comments     []Comment     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostLikes    []PostLike    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CommentLikes []CommentLike `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

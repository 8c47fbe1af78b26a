package model

import "time"

// Comment 评论模型。Username 在写入时固化为当时的用户名：
// 后续改名不会回写历史评论，编辑/删除的权限判断也按此字段比对。
// 级联删除走 UserID 外键，署名列只做展示与权限比对。
type Comment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	PostID    uint64    `gorm:"not null;index" json:"post_id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Username  string    `gorm:"not null;size:20" json:"username"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Likes []CommentLike `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE" json:"-"`
}

package model

import "time"

// Categories 文章的固定栏目，创建/更新时校验
var Categories = []string{
	"Cosmetics novelty",
	"Skincare",
	"Decorative cosmetics",
	"Hand-made",
	"Dangerous ingredients",
	"Procedures",
	"Recipes for youth",
}

// ValidCategory reports whether name is one of the fixed categories.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Post 文章模型。slug 由标题生成并全局唯一。
type Post struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Title     string    `gorm:"not null;size:200" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"not null;size:100" json:"category"`
	Slug      string    `gorm:"uniqueIndex;not null;size:220" json:"slug"`
	Image     string    `gorm:"size:64" json:"image,omitempty"`
	Views     int       `gorm:"not null;default:0" json:"views"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"author,omitempty"`

	// 删除文章时级联清理评论、标签与点赞
	Tags     []Tag      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Comments []Comment  `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Likes    []PostLike `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// Tag 标签模型，属于单篇文章，名称不要求唯一
type Tag struct {
	ID     uint64 `gorm:"primarykey" json:"id"`
	PostID uint64 `gorm:"not null;index" json:"post_id"`
	Name   string `gorm:"not null;size:20" json:"name"`
}

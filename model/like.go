package model

// PostLike 行存在即"已赞"。(user_id, post_id) 的唯一性由 toggle 逻辑保证，
// 不加库级唯一约束（与并发双击的已知竞态一并保留）。
type PostLike struct {
	ID     uint64 `gorm:"primarykey" json:"id"`
	UserID uint64 `gorm:"not null;index:idx_post_like" json:"user_id"`
	PostID uint64 `gorm:"not null;index:idx_post_like" json:"post_id"`
}

// CommentLike 与 PostLike 同语义，目标为评论
type CommentLike struct {
	ID        uint64 `gorm:"primarykey" json:"id"`
	UserID    uint64 `gorm:"not null;index:idx_comment_like" json:"user_id"`
	CommentID uint64 `gorm:"not null;index:idx_comment_like" json:"comment_id"`
}

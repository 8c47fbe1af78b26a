package dao

import (
	"errors"

	"ailablog/model"

	"gorm.io/gorm"
)

type LikeDAO struct {
	db *gorm.DB
}

func NewLikeDAO(db *gorm.DB) *LikeDAO {
	return &LikeDAO{db: db}
}

// TogglePostLike 查到点赞行就删（取消），没查到就插（点赞），整个翻转在
// 一个事务内。返回翻转后的状态与新计数。先读后写，两个并发翻转之间的竞态
// 是此设计的已知性质，不在这里解决。
func (dao *LikeDAO) TogglePostLike(userID, postID uint64) (liked bool, count int64, err error) {
	err = dao.db.Transaction(func(tx *gorm.DB) error {
		var existing model.PostLike
		findErr := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&existing).Error
		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.PostLike{UserID: userID, PostID: postID}).Error; err != nil {
				return err
			}
			liked = true
		default:
			return findErr
		}
		return tx.Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&count).Error
	})
	return liked, count, err
}

// ToggleCommentLike 与 TogglePostLike 同语义，目标为评论
func (dao *LikeDAO) ToggleCommentLike(userID, commentID uint64) (liked bool, count int64, err error) {
	err = dao.db.Transaction(func(tx *gorm.DB) error {
		var existing model.CommentLike
		findErr := tx.Where("user_id = ? AND comment_id = ?", userID, commentID).First(&existing).Error
		switch {
		case findErr == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			liked = false
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.CommentLike{UserID: userID, CommentID: commentID}).Error; err != nil {
				return err
			}
			liked = true
		default:
			return findErr
		}
		return tx.Model(&model.CommentLike{}).Where("comment_id = ?", commentID).Count(&count).Error
	})
	return liked, count, err
}

// CountForPost 返回文章当前点赞数
func (dao *LikeDAO) CountForPost(postID uint64) (int64, error) {
	var n int64
	err := dao.db.Model(&model.PostLike{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

// CountForComment 返回评论当前点赞数
func (dao *LikeDAO) CountForComment(commentID uint64) (int64, error) {
	var n int64
	err := dao.db.Model(&model.CommentLike{}).Where("comment_id = ?", commentID).Count(&n).Error
	return n, err
}

// IsPostLiked 查询某用户是否已赞该文章
func (dao *LikeDAO) IsPostLiked(userID, postID uint64) (bool, error) {
	var n int64
	err := dao.db.Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).Count(&n).Error
	return n > 0, err
}

// IsCommentLiked 查询某用户是否已赞该评论
func (dao *LikeDAO) IsCommentLiked(userID, commentID uint64) (bool, error) {
	var n int64
	err := dao.db.Model(&model.CommentLike{}).
		Where("user_id = ? AND comment_id = ?", userID, commentID).Count(&n).Error
	return n > 0, err
}

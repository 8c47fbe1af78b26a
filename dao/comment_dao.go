package dao

import (
	"ailablog/model"

	"gorm.io/gorm"
)

type CommentDAO struct {
	db *gorm.DB
}

func NewCommentDAO(db *gorm.DB) *CommentDAO {
	return &CommentDAO{db: db}
}

// Create 写入评论
func (dao *CommentDAO) Create(comment *model.Comment) error {
	return dao.db.Create(comment).Error
}

// GetByID 按主键取评论
func (dao *CommentDAO) GetByID(id uint64) (*model.Comment, error) {
	var comment model.Comment
	err := dao.db.First(&comment, id).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Save 持久化评论修改
func (dao *CommentDAO) Save(comment *model.Comment) error {
	return dao.db.Save(comment).Error
}

// Delete 删除评论，评论点赞级联清理
func (dao *CommentDAO) Delete(comment *model.Comment) error {
	return dao.db.Delete(comment).Error
}

// ListByPost 返回文章下的全部评论，新在前
func (dao *CommentDAO) ListByPost(postID uint64) ([]model.Comment, error) {
	var comments []model.Comment
	err := dao.db.Where("post_id = ?", postID).Order("created_at DESC").Find(&comments).Error
	return comments, err
}

// CountByPost 返回文章下的评论数
func (dao *CommentDAO) CountByPost(postID uint64) (int64, error) {
	var n int64
	err := dao.db.Model(&model.Comment{}).Where("post_id = ?", postID).Count(&n).Error
	return n, err
}

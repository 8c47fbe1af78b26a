package service

import (
	"errors"

	"ailablog/dao"
	"ailablog/model"

	"gorm.io/gorm"
)

// CommentService 评论的增改删。编辑与删除对"评论作者或管理员"开放。
type CommentService struct {
	comments *dao.CommentDAO
	posts    *dao.PostDAO
}

func NewCommentService(comments *dao.CommentDAO, posts *dao.PostDAO) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

// Add 任何登录用户可评论；写入时固化当时的用户名
func (s *CommentService) Add(acting *model.User, postSlug, body string) (*model.Comment, error) {
	post, err := s.posts.GetBySlug(postSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	comment := &model.Comment{
		PostID:   post.ID,
		UserID:   acting.ID,
		Username: acting.Username,
		Body:     body,
	}
	if err := s.comments.Create(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Update 作者或管理员可编辑
func (s *CommentService) Update(acting *model.User, commentID uint64, body string) (*model.Comment, error) {
	comment, err := s.getByID(commentID)
	if err != nil {
		return nil, err
	}
	if !canModerate(acting, comment) {
		return nil, ErrPermissionDenied
	}
	comment.Body = body
	if err := s.comments.Save(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete 作者或管理员可删除，评论点赞级联清理
func (s *CommentService) Delete(acting *model.User, commentID uint64) error {
	comment, err := s.getByID(commentID)
	if err != nil {
		return err
	}
	if !canModerate(acting, comment) {
		return ErrPermissionDenied
	}
	return s.comments.Delete(comment)
}

func (s *CommentService) getByID(id uint64) (*model.Comment, error) {
	comment, err := s.comments.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

// 权限按写入时固化的用户名比对；改过名的作者将失去编辑权，保持原有行为
func canModerate(acting *model.User, comment *model.Comment) bool {
	return acting.Username == comment.Username || acting.IsAdmin()
}

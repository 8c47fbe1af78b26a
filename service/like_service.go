package service

import (
	"errors"

	"ailablog/dao"

	"gorm.io/gorm"
)

// LikeService 点赞翻转：有则删（取消），无则插（点赞）。
// 没有独立的 like/unlike 动词，连续两次调用回到原点。
type LikeService struct {
	likes    *dao.LikeDAO
	posts    *dao.PostDAO
	comments *dao.CommentDAO
}

func NewLikeService(likes *dao.LikeDAO, posts *dao.PostDAO, comments *dao.CommentDAO) *LikeService {
	return &LikeService{likes: likes, posts: posts, comments: comments}
}

// ToggleResult 返回给前端刷新按钮状态所需的两个值
type ToggleResult struct {
	Likes int64 `json:"likes"`
	Liked bool  `json:"liked"`
}

// TogglePost 翻转用户对文章的点赞
func (s *LikeService) TogglePost(userID uint64, postSlug string) (*ToggleResult, error) {
	post, err := s.posts.GetBySlug(postSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	liked, count, err := s.likes.TogglePostLike(userID, post.ID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Likes: count, Liked: liked}, nil
}

// ToggleComment 翻转用户对评论的点赞
func (s *LikeService) ToggleComment(userID, commentID uint64) (*ToggleResult, error) {
	if _, err := s.comments.GetByID(commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	liked, count, err := s.likes.ToggleCommentLike(userID, commentID)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Likes: count, Liked: liked}, nil
}

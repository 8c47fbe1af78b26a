package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"ailablog/dao"
	"ailablog/internal/events"
	"ailablog/internal/slug"
	"ailablog/internal/storage"
	"ailablog/model"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// DefaultPerPage 列表分页默认条数
const DefaultPerPage = 3

// PostService owns the article workflows: create/update/delete, the view
// counter, tag attachment and full-text search.
type PostService struct {
	posts    *dao.PostDAO
	comments *dao.CommentDAO
	likes    *dao.LikeDAO
	store    *storage.ImageStore
	producer *events.Producer
}

func NewPostService(posts *dao.PostDAO, comments *dao.CommentDAO, likes *dao.LikeDAO, store *storage.ImageStore, producer *events.Producer) *PostService {
	return &PostService{posts: posts, comments: comments, likes: likes, store: store, producer: producer}
}

// PostDetail 文章详情视图：实体 + 评论 + 点赞信息
type PostDetail struct {
	Post      *model.Post     `json:"post"`
	Comments  []model.Comment `json:"comments"`
	LikeCount int64           `json:"like_count"`
	Liked     bool            `json:"liked"`
}

// CreateInput 创建/更新文章的输入。Tags 为斜杠分隔串，如 "Test1/Test2"。
type CreateInput struct {
	Title    string
	Content  string
	Category string
	Tags     string
	Image    io.Reader // 可选
	ImageRef string    // 图片原始文件名，仅用于扩展名校验
}

// SplitTags 将斜杠分隔的标签串拆为 token，空段丢弃
func SplitTags(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "/")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Create derives the slug, stores the optional image and writes post + tags
// in one transaction. A slug collision rolls the whole thing back.
func (s *PostService) Create(acting *model.User, in CreateInput) (*model.Post, error) {
	if !model.ValidCategory(in.Category) {
		return nil, ErrUnknownCategory
	}

	post := &model.Post{
		UserID:   acting.ID,
		Title:    in.Title,
		Content:  in.Content,
		Category: in.Category,
		Slug:     slug.Make(in.Title),
	}

	// store 未配置时忽略图片，文章照常发布
	if in.Image != nil && s.store != nil {
		stored, err := s.store.SavePostImage(acting.Username, in.ImageRef, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = stored
	}

	if err := s.posts.CreateWithTags(post, SplitTags(in.Tags)); err != nil {
		return nil, mapDuplicate(err, ErrTitleTaken)
	}

	if err := s.producer.Publish(context.Background(), events.PostEvent{
		Type:   events.PostCreated,
		PostID: post.ID,
		Slug:   post.Slug,
		Author: acting.Username,
	}); err != nil {
		log.Printf("publish post.created for %s failed: %v", post.Slug, err)
	}
	return post, nil
}

// Update 仅作者可改。标题变更会重算 slug，同样受唯一性约束。
// 提交了新图片时替换引用，旧文件不保证清理。
func (s *PostService) Update(acting *model.User, slugStr string, in CreateInput) (*model.Post, error) {
	post, err := s.getBySlug(slugStr)
	if err != nil {
		return nil, err
	}
	if post.UserID != acting.ID {
		return nil, ErrPermissionDenied
	}
	if !model.ValidCategory(in.Category) {
		return nil, ErrUnknownCategory
	}

	if in.Title != post.Title {
		post.Slug = slug.Make(in.Title)
	}
	post.Title = in.Title
	post.Content = in.Content
	post.Category = in.Category

	if in.Image != nil && s.store != nil {
		stored, err := s.store.SavePostImage(acting.Username, in.ImageRef, in.Image)
		if err != nil {
			return nil, err
		}
		post.Image = stored
	}

	if err := s.posts.Save(post); err != nil {
		return nil, mapDuplicate(err, ErrTitleTaken)
	}
	return post, nil
}

// Get returns the detail view and bumps the view counter by exactly one.
// 作者本人访问、重复刷新同样计数，保持原有的统计口径。
// actingID 为 0 表示匿名访问，liked 恒为 false。
func (s *PostService) Get(slugStr string, actingID uint64) (*PostDetail, error) {
	post, err := s.getBySlug(slugStr)
	if err != nil {
		return nil, err
	}
	if err := s.posts.IncrementViews(post.ID); err != nil {
		return nil, err
	}
	post.Views++

	comments, err := s.comments.ListByPost(post.ID)
	if err != nil {
		return nil, err
	}
	likeCount, err := s.likes.CountForPost(post.ID)
	if err != nil {
		return nil, err
	}
	liked := false
	if actingID != 0 {
		liked, _ = s.likes.IsPostLiked(actingID, post.ID)
	}
	return &PostDetail{Post: post, Comments: comments, LikeCount: likeCount, Liked: liked}, nil
}

// Delete 作者或管理员可删；评论/标签/点赞由级联外键一并清除
func (s *PostService) Delete(acting *model.User, slugStr string) error {
	post, err := s.getBySlug(slugStr)
	if err != nil {
		return err
	}
	if post.UserID != acting.ID && !acting.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.posts.Delete(post); err != nil {
		return err
	}
	if err := s.producer.Publish(context.Background(), events.PostEvent{
		Type:   events.PostDeleted,
		PostID: post.ID,
		Slug:   post.Slug,
		Author: acting.Username,
	}); err != nil {
		log.Printf("publish post.deleted for %s failed: %v", post.Slug, err)
	}
	return nil
}

// AddTags 仅作者可为文章追加标签，raw 为斜杠分隔串
func (s *PostService) AddTags(acting *model.User, slugStr, raw string) ([]model.Tag, error) {
	post, err := s.getBySlug(slugStr)
	if err != nil {
		return nil, err
	}
	if post.UserID != acting.ID {
		return nil, ErrPermissionDenied
	}
	names := SplitTags(raw)
	if len(names) > 0 {
		if err := s.posts.AddTags(post.ID, names); err != nil {
			return nil, err
		}
	}
	return s.posts.TagsByPost(post.ID)
}

// PostPage 分页结果
type PostPage struct {
	Posts   []model.Post `json:"posts"`
	Total   int64        `json:"total"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

// List 分页列出文章，支持按栏目/作者过滤
func (s *PostService) List(page, perPage int, filter dao.ListFilter) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	posts, total, err := s.posts.List(page, perPage, filter)
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, Total: total, Page: page, PerPage: perPage}, nil
}

// Search 将关键词查询委托给全文索引，相关度排序由索引决定
func (s *PostService) Search(keyword string, fields []string, limit int) ([]model.Post, error) {
	if limit < 1 || limit > 50 {
		limit = 6
	}
	return s.posts.Search(keyword, fields, limit)
}

func (s *PostService) getBySlug(slugStr string) (*model.Post, error) {
	post, err := s.posts.GetBySlug(slugStr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

// mapDuplicate 将重复键错误映射为业务错误，其余原样返回
func mapDuplicate(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return sentinel
	}
	// sqlite 唯一键冲突在测试路径上以字符串形式出现
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return sentinel
	}
	return err
}

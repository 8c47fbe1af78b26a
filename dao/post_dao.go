package dao

import (
	"strings"

	"ailablog/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostDAO struct {
	db *gorm.DB
}

func NewPostDAO(db *gorm.DB) *PostDAO {
	return &PostDAO{db: db}
}

// CreateWithTags 在一个事务里写入文章与其全部标签。
// 任一步失败（典型：slug 唯一键冲突）整体回滚，不留下孤儿行。
func (dao *PostDAO) CreateWithTags(post *model.Post, tagNames []string) error {
	return dao.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		for _, name := range tagNames {
			tag := model.Tag{PostID: post.ID, Name: name}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBySlug 按 slug 取文章，带作者与标签
func (dao *PostDAO) GetBySlug(slug string) (*model.Post, error) {
	var post model.Post
	err := dao.db.Preload("Tags").Preload("User").Where("slug = ?", slug).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByID 按主键取文章
func (dao *PostDAO) GetByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := dao.db.Preload("Tags").Preload("User").First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// IncrementViews 浏览计数 +1，立即落库。每次 GET 都计数，不去重。
func (dao *PostDAO) IncrementViews(id uint64) error {
	return dao.db.Model(&model.Post{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// Save 持久化文章修改
func (dao *PostDAO) Save(post *model.Post) error {
	return dao.db.Save(post).Error
}

// Delete 删除文章。评论/标签/点赞由外键级联清理。
func (dao *PostDAO) Delete(post *model.Post) error {
	return dao.db.Delete(post).Error
}

// AddTags 给既有文章追加标签
func (dao *PostDAO) AddTags(postID uint64, names []string) error {
	return dao.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			tag := model.Tag{PostID: postID, Name: name}
			if err := tx.Create(&tag).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TagsByPost 返回文章的全部标签
func (dao *PostDAO) TagsByPost(postID uint64) ([]model.Tag, error) {
	var tags []model.Tag
	err := dao.db.Where("post_id = ?", postID).Find(&tags).Error
	return tags, err
}

// ListFilter 列表查询的可选过滤条件
type ListFilter struct {
	Category string
	UserID   uint64
}

// List 分页返回文章（新在前）以及过滤后的总数
func (dao *PostDAO) List(page, perPage int, filter ListFilter) ([]model.Post, int64, error) {
	q := dao.db.Model(&model.Post{})
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.Post
	err := q.Preload("Tags").Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&posts).Error
	return posts, total, err
}

// Search 将关键词匹配委托给数据库的全文索引。MySQL 用 MATCH ... AGAINST
// 按相关度排序；其他方言（测试用 sqlite）退化为 LIKE。
func (dao *PostDAO) Search(keyword string, fields []string, limit int) ([]model.Post, error) {
	if len(fields) == 0 {
		fields = []string{"title", "content"}
	}
	cols := make([]string, 0, 2)
	for _, f := range fields {
		if f == "title" || f == "content" {
			cols = append(cols, f)
		}
	}
	if len(cols) == 0 {
		cols = []string{"title", "content"}
	}

	var posts []model.Post
	if dao.db.Dialector.Name() == "mysql" {
		expr := "MATCH(" + strings.Join(cols, ", ") + ") AGAINST(? IN NATURAL LANGUAGE MODE)"
		err := dao.db.Preload("Tags").Preload("User").
			Where(expr, keyword).
			Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:  expr + " DESC",
				Vars: []interface{}{keyword},
			}}).
			Limit(limit).
			Find(&posts).Error
		return posts, err
	}

	q := dao.db.Preload("Tags").Preload("User")
	pattern := "%" + keyword + "%"
	switch len(cols) {
	case 1:
		q = q.Where(cols[0]+" LIKE ?", pattern)
	default:
		q = q.Where("title LIKE ? OR content LIKE ?", pattern, pattern)
	}
	err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// Count 返回文章总数
func (dao *PostDAO) Count() (int64, error) {
	var n int64
	err := dao.db.Model(&model.Post{}).Count(&n).Error
	return n, err
}

package v1

import (
	"io"
	"net/http"
	"strings"

	"ailablog/api/v1/request"
	"ailablog/dao"
	"ailablog/internal/metrics"
	"ailablog/service"

	"github.com/gin-gonic/gin"
)

// PostAPI 文章相关的 HTTP Handler
type PostAPI struct {
	posts *service.PostService
	users *service.UserService
}

func NewPostAPI(posts *service.PostService, users *service.UserService) *PostAPI {
	return &PostAPI{posts: posts, users: users}
}

// Create 创建文章（multipart 表单，图片字段 "picture" 可选）
func (p *PostAPI) Create(c *gin.Context) {
	acting, err := p.users.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var form request.PostForm
	if err := c.ShouldBind(&form); err != nil {
		metrics.IncPostCreated("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.CreateInput{
		Title:    form.Title,
		Content:  form.Content,
		Category: form.Category,
		Tags:     form.Tags,
	}
	if file, err := c.FormFile("picture"); err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer src.Close()
		in.Image = io.Reader(src)
		in.ImageRef = file.Filename
	}

	post, err := p.posts.Create(acting, in)
	if err != nil {
		metrics.IncPostCreated("error")
		writeServiceError(c, err)
		return
	}
	metrics.IncPostCreated("success")
	c.JSON(http.StatusCreated, post)
}

// Update 更新文章（作者）
func (p *PostAPI) Update(c *gin.Context) {
	acting, err := p.users.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	var form request.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := service.CreateInput{
		Title:    form.Title,
		Content:  form.Content,
		Category: form.Category,
		Tags:     form.Tags,
	}
	if file, err := c.FormFile("picture"); err == nil {
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		defer src.Close()
		in.Image = io.Reader(src)
		in.ImageRef = file.Filename
	}

	post, err := p.posts.Update(acting, c.Param("slug"), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// Get 文章详情。每次请求浏览数 +1。
func (p *PostAPI) Get(c *gin.Context) {
	detail, err := p.posts.Get(c.Param("slug"), currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Delete 删除文章（作者）
func (p *PostAPI) Delete(c *gin.Context) {
	acting, err := p.users.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if err := p.posts.Delete(acting, c.Param("slug")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
}

// AddTags 为文章追加斜杠分隔的标签（作者）
func (p *PostAPI) AddTags(c *gin.Context) {
	acting, err := p.users.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	var req request.AddTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tags, err := p.posts.AddTags(acting, c.Param("slug"), req.Tags)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// List 文章列表，支持 page/per_page/category 参数
func (p *PostAPI) List(c *gin.Context) {
	page := intQuery(c, "page", 1)
	perPage := intQuery(c, "per_page", service.DefaultPerPage)
	filter := dao.ListFilter{Category: c.Query("category")}
	pageData, err := p.posts.List(page, perPage, filter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pageData)
}

// Search 全文搜索：q 关键词，fields 逗号分隔的字段子集，limit 条数
func (p *PostAPI) Search(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q"})
		return
	}
	var fields []string
	if raw := c.Query("fields"); raw != "" {
		fields = strings.Split(raw, ",")
	}
	metrics.IncSearch()
	posts, err := p.posts.Search(keyword, fields, intQuery(c, "limit", 6))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

package v1

import (
	"net/http"
	"strconv"

	"ailablog/api/v1/request"
	"ailablog/internal/metrics"
	"ailablog/service"

	"github.com/gin-gonic/gin"
)

// CommentAPI 评论相关的 HTTP Handler
type CommentAPI struct {
	comments *service.CommentService
	users    *service.UserService
}

func NewCommentAPI(comments *service.CommentService, users *service.UserService) *CommentAPI {
	return &CommentAPI{comments: comments, users: users}
}

// Add 在文章下新增评论
func (a *CommentAPI) Add(c *gin.Context) {
	acting, err := a.users.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	var req request.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := a.comments.Add(acting, c.Param("slug"), req.Body)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	metrics.IncComment()
	c.JSON(http.StatusCreated, comment)
}

// Update 编辑评论（作者或管理员）
func (a *CommentAPI) Update(c *gin.Context) {
	acting, err := a.users.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}
	var req request.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	comment, err := a.comments.Update(acting, id, req.Body)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete 删除评论（作者或管理员）
func (a *CommentAPI) Delete(c *gin.Context) {
	acting, err := a.users.GetByID(currentUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}
	if err := a.comments.Delete(acting, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}

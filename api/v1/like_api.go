package v1

import (
	"net/http"
	"strconv"

	"ailablog/internal/metrics"
	"ailablog/service"

	"github.com/gin-gonic/gin"
)

// LikeAPI 点赞翻转的 HTTP Handler。响应体与前端按钮刷新逻辑约定：
// {"likes": <count>, "liked": <bool>}
type LikeAPI struct {
	likes *service.LikeService
}

func NewLikeAPI(likes *service.LikeService) *LikeAPI {
	return &LikeAPI{likes: likes}
}

// TogglePost 翻转当前用户对文章的点赞
func (a *LikeAPI) TogglePost(c *gin.Context) {
	res, err := a.likes.TogglePost(currentUserID(c), c.Param("slug"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	metrics.IncLikeToggle("post")
	c.JSON(http.StatusOK, res)
}

// ToggleComment 翻转当前用户对评论的点赞
func (a *LikeAPI) ToggleComment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}
	res, err := a.likes.ToggleComment(currentUserID(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	metrics.IncLikeToggle("comment")
	c.JSON(http.StatusOK, res)
}

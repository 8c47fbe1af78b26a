package request

// 创建/更新文章走 multipart 表单，图片字段单独处理
type PostForm struct {
	Title    string `form:"title" binding:"required,max=200"`
	Content  string `form:"content" binding:"required"`
	Category string `form:"category" binding:"required,category"`
	Tags     string `form:"tags"` // 斜杠分隔，如 "Test1/Test2"
}

type AddTagsRequest struct {
	Tags string `json:"tags" binding:"required"`
}

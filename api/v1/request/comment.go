package request

type CommentRequest struct {
	Body string `json:"body" binding:"required,max=2000"`
}

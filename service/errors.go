package service

import "errors"

// 业务错误，API 层据此映射 HTTP 状态码
var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrUserExists         = errors.New("user already exists")
	ErrTitleTaken         = errors.New("title already used")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrAdminUndeletable   = errors.New("admin cannot be deleted")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

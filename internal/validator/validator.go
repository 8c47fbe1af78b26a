package validator

import (
	"github.com/go-playground/validator/v10"

	"ailablog/model"
)

// IsCategory 校验文章栏目是否属于固定枚举
func IsCategory(fl validator.FieldLevel) bool {
	return model.ValidCategory(fl.Field().String())
}

// IsRole accepts the two supported account roles; empty values fall back to
// the default at the service layer.
func IsRole(fl validator.FieldLevel) bool {
	role := fl.Field().String()
	return role == "" || role == model.RoleAdmin || role == model.RoleUser
}

package dao

import (
	"ailablog/model"

	"gorm.io/gorm"
)

type UserDAO struct {
	db *gorm.DB
}

// NewUserDAO 创建一个新的 UserDAO 实例
func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

// CreateUser 创建新用户
func (dao *UserDAO) CreateUser(user *model.User) error {
	return dao.db.Create(user).Error
}

// GetByID 根据主键获取用户
func (dao *UserDAO) GetByID(id uint64) (*model.User, error) {
	var user model.User
	err := dao.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername 根据用户名获取用户
func (dao *UserDAO) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := dao.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail 根据邮箱获取用户
func (dao *UserDAO) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := dao.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Save 持久化对用户的修改
func (dao *UserDAO) Save(user *model.User) error {
	return dao.db.Save(user).Error
}

// UpdatePassword 只更新密码哈希
func (dao *UserDAO) UpdatePassword(id uint64, hashed string) error {
	return dao.db.Model(&model.User{}).Where("id = ?", id).Update("password", hashed).Error
}

// Delete 删除用户，关联内容由外键级联清理
func (dao *UserDAO) Delete(user *model.User) error {
	return dao.db.Delete(user).Error
}

// Count 返回用户总数
func (dao *UserDAO) Count() (int64, error) {
	var n int64
	err := dao.db.Model(&model.User{}).Count(&n).Error
	return n, err
}

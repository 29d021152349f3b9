package models

import (
	"time"

	"gorm.io/gorm"
)

// User 代表平台上的一个用户账户。
// 注册、登录与会话由独立的用户服务负责；本服务只读取用户的
// 大学归属，用来决定报告与查询落在哪所大学。
type User struct {
	gorm.Model

	Username    string     `gorm:"unique;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	University  string     `gorm:"size:255" json:"university"` // 用户填写的大学名称
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// University 代表一所已登记的大学。
// 报告、摘要与预测都以 University 的主键为外键归属。
type University struct {
	gorm.Model

	Name string `gorm:"uniqueIndex;not null;size:255" json:"name"` // 大学名称，唯一
}

// --- 自定义表名 ---

func (User) TableName() string {
	return "users"
}

func (University) TableName() string {
	return "universities"
}

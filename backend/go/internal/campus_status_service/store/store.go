package store

import (
	"CampusEat/backend/go/internal/models"

	"gorm.io/gorm"
)

// Store 封装了校园实时状况子系统的所有数据库操作。
type Store struct {
	DB *gorm.DB
}

// NewStore 创建一个新的 Store 实例。
func NewStore(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// --- User & University ---

// GetUserByID 通过 ID 查找用户。
func (s *Store) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUniversityByName 通过名称查找大学。
// 用户资料里的大学归属是名称字符串，报告与查询都要先解析成主键。
func (s *Store) GetUniversityByName(name string) (*models.University, error) {
	var university models.University
	if err := s.DB.Where("name = ?", name).First(&university).Error; err != nil {
		return nil, err
	}
	return &university, nil
}

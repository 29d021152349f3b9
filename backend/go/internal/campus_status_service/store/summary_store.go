package store

import (
	"errors"

	"CampusEat/backend/go/internal/models"

	"gorm.io/gorm"
)

// --- Summary Management ---

// SaveSummary 持久化一条新的摘要。
// 旧摘要不删除：查询方只读最新一条，过期与否是展示层的关注点。
func (s *Store) SaveSummary(summary *models.CampusSummary) error {
	return s.DB.Create(summary).Error
}

// LatestSummary 返回指定大学最近创建的一条摘要。
// 即使 validUntil 已过也照样返回；没有任何摘要时返回 (nil, nil)。
func (s *Store) LatestSummary(universityID uint) (*models.CampusSummary, error) {
	var summary models.CampusSummary
	err := s.DB.
		Where("university_id = ?", universityID).
		Order("created_at DESC").
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}

package store

import (
	"errors"

	"CampusEat/backend/go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Prediction Management ---

// GetPrediction 返回指定大学、指定星期几的预测时间线。
// 还没有训练结果时返回 (nil, nil)：对未训练的 (大学, 星期) 组合来说这是常态，不是错误。
func (s *Store) GetPrediction(universityID uint, day models.DayOfWeek) (*models.CampusPrediction, error) {
	var prediction models.CampusPrediction
	err := s.DB.
		Where("university_id = ? AND day_of_week = ?", universityID, day).
		First(&prediction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &prediction, nil
}

// UpsertPrediction 按 (university_id, day_of_week) 自然键整体覆盖写入一条预测。
// 这是训练管线侧的写入契约（ml-server 对同一张表做 ON CONFLICT DO UPDATE），
// 核心服务自身只在本地开发填充数据时调用。
func (s *Store) UpsertPrediction(prediction *models.CampusPrediction) error {
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "university_id"}, {Name: "day_of_week"}},
		DoUpdates: clause.AssignmentColumns([]string{"timeline", "updated_at"}),
	}).Create(prediction).Error
}

package store

import (
	"time"

	"CampusEat/backend/go/internal/models"
)

// --- Report Management ---

// CreateReport 追加一条新的校园实时报告。
// 报告只追加不修改，时间戳由数据库在写入时生成。
func (s *Store) CreateReport(report *models.CampusReport) error {
	return s.DB.Create(report).Error
}

// ActiveUniversityIDs 返回在 since 之后（严格大于）有新报告的大学 ID 去重集合。
// 聚合调度器每个 tick 用它来决定要为哪些大学生成摘要。
func (s *Store) ActiveUniversityIDs(since time.Time) ([]uint, error) {
	var ids []uint
	err := s.DB.Model(&models.CampusReport{}).
		Distinct("university_id").
		Where("created_at > ?", since).
		Pluck("university_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ReportsInWindow 返回指定大学在 since 之后（严格大于）创建的全部报告，按创建时间升序。
// 恰好落在窗口边界上的报告不包含在内。
func (s *Store) ReportsInWindow(universityID uint, since time.Time) ([]models.CampusReport, error) {
	var reports []models.CampusReport
	err := s.DB.
		Where("university_id = ? AND created_at > ?", universityID, since).
		Order("created_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"

	"CampusEat/backend/go/internal/models"
	"CampusEat/backend/go/pkg/logger"

	"gorm.io/gorm"
)

// 调用方可见的错误类别。API 层据此映射 HTTP 状态码。
var (
	// ErrUniversityNotFound 表示用户资料里的大学无法解析成已登记的大学。
	ErrUniversityNotFound = errors.New("未找到用户的大学信息")
	// ErrInvalidCategory 表示报告分类不在枚举之内。
	ErrInvalidCategory = errors.New("无效的报告分类")
	// ErrInvalidDayOfWeek 表示星期标签不是七个规范值之一。
	ErrInvalidDayOfWeek = errors.New("无效的星期标签")
	// ErrEmptyContent 表示报告内容为空。
	ErrEmptyContent = errors.New("报告内容不能为空")
)

// Store 是门面依赖的数据访问接口，由 store.Store 实现。
type Store interface {
	GetUserByID(id uint) (*models.User, error)
	GetUniversityByName(name string) (*models.University, error)
	CreateReport(report *models.CampusReport) error
	LatestSummary(universityID uint) (*models.CampusSummary, error)
	GetPrediction(universityID uint, day models.DayOfWeek) (*models.CampusPrediction, error)
}

// SummaryCache 是可选的最新摘要缓存读取接口。
type SummaryCache interface {
	GetLatest(ctx context.Context, universityID uint) (*models.CampusSummary, error)
}

// CreateReportInput 是提交报告的入参。
type CreateReportInput struct {
	Content          string
	Category         models.ReportCategory
	WeatherCondition string
}

// PredictionResult 是预测查询的出参。
// 没有训练结果时 Status 为 "empty"——这是正常状态而不是错误。
type PredictionResult struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Timeline json.RawMessage `json:"timeline,omitempty"`
}

// Service 封装了校园实时状况的查询门面：
// 提交报告、读取最新摘要、读取按星期的预测。
// 所有操作都先把当前用户解析到其归属大学。
type Service struct {
	store  Store
	cache  SummaryCache
	logger *logger.Logger
}

// NewService 创建一个新的 Service 实例。cache 允许为 nil。
func NewService(store Store, cache SummaryCache, log *logger.Logger) *Service {
	return &Service{store: store, cache: cache, logger: log}
}

// resolveUniversityID 把用户解析到其归属大学的主键。
// 用户不存在或大学未登记都视为大学信息缺失，向调用方暴露 not-found 类错误。
func (s *Service) resolveUniversityID(userID uint) (uint, error) {
	user, err := s.store.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUniversityNotFound
		}
		return 0, err
	}

	university, err := s.store.GetUniversityByName(user.University)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUniversityNotFound
		}
		return 0, err
	}

	return university.ID, nil
}

// CreateReport 为当前用户所属的大学追加一条实时报告。
func (s *Service) CreateReport(ctx context.Context, userID uint, input *CreateReportInput) (*models.CampusReport, error) {
	if input.Content == "" {
		return nil, ErrEmptyContent
	}
	if !models.ValidCategory(input.Category) {
		return nil, ErrInvalidCategory
	}

	universityID, err := s.resolveUniversityID(userID)
	if err != nil {
		return nil, err
	}

	report := &models.CampusReport{
		Content:          input.Content,
		Category:         input.Category,
		WeatherCondition: input.WeatherCondition,
		AuthorID:         &userID,
		UniversityID:     universityID,
		// 经过认证的提交直接标记为已验证。
		IsVerified: true,
	}

	if err := s.store.CreateReport(report); err != nil {
		return nil, err
	}

	s.logger.WithPayload(map[string]interface{}{
		"report_id":     report.ID,
		"category":      report.Category,
		"university_id": report.UniversityID,
	}).Info("新报告已创建")

	return report, nil
}

// GetLatestSummary 返回当前用户所属大学的最新摘要。
// 还没有任何摘要时返回 (nil, nil)；有效期是否已过由展示层判断。
// 缓存命中时直接返回，缓存故障静默回落到数据库。
func (s *Service) GetLatestSummary(ctx context.Context, userID uint) (*models.CampusSummary, error) {
	universityID, err := s.resolveUniversityID(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, err := s.cache.GetLatest(ctx, universityID)
		if err != nil {
			s.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "cache_error"}).
				Warn("读取摘要缓存失败，回落到数据库")
		} else if cached != nil {
			return cached, nil
		}
	}

	return s.store.LatestSummary(universityID)
}

// GetPrediction 返回当前用户所属大学在指定星期的拥挤度预测。
// 没有训练结果的 (大学, 星期) 组合返回 empty 状态，绝不报错。
func (s *Service) GetPrediction(ctx context.Context, userID uint, day models.DayOfWeek) (*PredictionResult, error) {
	if !models.ValidDayOfWeek(day) {
		return nil, ErrInvalidDayOfWeek
	}

	universityID, err := s.resolveUniversityID(userID)
	if err != nil {
		return nil, err
	}

	prediction, err := s.store.GetPrediction(universityID, day)
	if err != nil {
		return nil, err
	}

	if prediction == nil {
		return &PredictionResult{
			Status:  "empty",
			Message: "아직 예측 데이터가 생성되지 않았습니다.",
		}, nil
	}

	return &PredictionResult{
		Status:   "success",
		Timeline: json.RawMessage(prediction.Timeline),
	}, nil
}

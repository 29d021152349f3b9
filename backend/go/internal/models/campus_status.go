package models

import (
	"time"

	"gorm.io/datatypes"
)

// ReportCategory 定义了校园实时报告的分类。
type ReportCategory string

const (
	CategoryTraffic   ReportCategory = "TRAFFIC"   // 交通 / 班车
	CategoryCafeteria ReportCategory = "CAFETERIA" // 食堂
	CategoryEvent     ReportCategory = "EVENT"     // 校内活动
	CategoryWeather   ReportCategory = "WEATHER"   // 天气
	CategoryEtc       ReportCategory = "ETC"       // 其他
)

// ValidCategory 校验给定的分类是否为枚举中的合法值。
func ValidCategory(c ReportCategory) bool {
	switch c {
	case CategoryTraffic, CategoryCafeteria, CategoryEvent, CategoryWeather, CategoryEtc:
		return true
	}
	return false
}

// DayOfWeek 定义了预测数据使用的星期标签。
type DayOfWeek string

const (
	DayMonday    DayOfWeek = "MON"
	DayTuesday   DayOfWeek = "TUE"
	DayWednesday DayOfWeek = "WED"
	DayThursday  DayOfWeek = "THU"
	DayFriday    DayOfWeek = "FRI"
	DaySaturday  DayOfWeek = "SAT"
	DaySunday    DayOfWeek = "SUN"
)

// ValidDayOfWeek 校验给定的星期标签是否为七个规范值之一。
func ValidDayOfWeek(d DayOfWeek) bool {
	switch d {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday:
		return true
	}
	return false
}

// CampusReport 代表一条用户提交的校园实时报告。
// 报告是只追加的：创建之后不再修改或删除。
// (university_id, created_at) 上的复合索引保证滑动窗口扫描走索引。
type CampusReport struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Content          string         `gorm:"size:500;not null" json:"content"`          // 自由文本内容
	Category         ReportCategory `gorm:"type:varchar(20);not null" json:"category"` // 报告分类
	WeatherCondition string         `gorm:"size:50" json:"weatherCondition,omitempty"` // 可选的天气状况标签
	IsVerified       bool           `gorm:"default:false" json:"isVerified"`           // 是否为已验证用户的提交
	AuthorID         *uint          `gorm:"index" json:"authorId,omitempty"`           // 提交者，账号注销后置空
	UniversityID     uint           `gorm:"not null;index:idx_report_window,priority:1" json:"universityId"`
	CreatedAt        time.Time      `gorm:"index:idx_report_window,priority:2" json:"createdAt"`
}

// SummaryEntry 是摘要 breakdown 数组中的一项，按分类聚合。
// confidence 与 reportCount 来自生成服务的原样输出，本服务不做二次校验。
type SummaryEntry struct {
	Category    ReportCategory `json:"category"`    // 分类
	Summary     string         `json:"summary"`     // 该分类的自然语言摘要
	Confidence  int            `json:"confidence"`  // 置信度 0-100
	ReportCount int            `json:"reportCount"` // 参与汇总的报告数量
}

// CampusSummary 代表一次聚合运行产出的、带有效期的摘要。
// 摘要只新增不修改，查询方始终读取最新一条；过期行不删除，由新行覆盖语义取代。
type CampusSummary struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UniversityID uint           `gorm:"not null;index:idx_summary_latest,priority:1" json:"universityId"`
	Breakdown    datatypes.JSON `gorm:"type:json;not null" json:"breakdown"` // SummaryEntry 数组
	ValidUntil   time.Time      `gorm:"not null" json:"validUntil"`          // 有效期截止 (createdAt + 窗口)
	CreatedAt    time.Time      `gorm:"index:idx_summary_latest,priority:2" json:"createdAt"`
}

// TimelineSlot 是预测时间线中的一个时段。
type TimelineSlot struct {
	Time       string `json:"time"`       // 时段标签 (例如: "08:15")
	Congestion int    `json:"congestion"` // 拥挤度 0-100
	Category   string `json:"category"`   // 该时段的主导分类
	Summary    string `json:"summary"`    // 该时段的文字说明
}

// CampusPrediction 代表某大学某个星期几的拥挤度预测时间线。
// 训练服务按 (university_id, day_of_week) 自然键整体覆盖写入，不累积历史。
type CampusPrediction struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	UniversityID uint           `gorm:"not null;uniqueIndex:idx_prediction_day,priority:1" json:"universityId"`
	DayOfWeek    DayOfWeek      `gorm:"type:varchar(3);not null;uniqueIndex:idx_prediction_day,priority:2" json:"dayOfWeek"`
	Timeline     datatypes.JSON `gorm:"type:json;not null" json:"timeline"` // TimelineSlot 数组
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// --- 自定义表名 ---

func (CampusReport) TableName() string {
	return "campus_reports"
}

func (CampusSummary) TableName() string {
	return "campus_summaries"
}

func (CampusPrediction) TableName() string {
	return "campus_predictions"
}

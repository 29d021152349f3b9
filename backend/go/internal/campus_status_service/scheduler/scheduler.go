package scheduler

import (
	"context"
	"time"

	"CampusEat/backend/go/internal/models"
	"CampusEat/backend/go/pkg/logger"

	"github.com/google/uuid"
)

// ActiveSource 提供"在 since 之后有新报告的大学"集合。
type ActiveSource interface {
	ActiveUniversityIDs(since time.Time) ([]uint, error)
}

// Dispatcher 负责把一个摘要任务交给执行方（进程内引擎或 Kafka 队列）。
type Dispatcher interface {
	Dispatch(ctx context.Context, job *models.SummaryJob) error
}

// TrainingTrigger 是每周训练触发器的外部依赖。
type TrainingTrigger interface {
	TrainAll(ctx context.Context) error
}

// Options 汇总了调度器的节奏参数。零值字段回落到参考节奏。
type Options struct {
	AggregationInterval time.Duration // 聚合 tick 周期
	ReportWindow        time.Duration // 活跃大学判定的滑动窗口
	TrainingWeekday     time.Weekday  // 每周训练的触发星期
	TrainingHour        int           // 每周训练的触发小时 (UTC)
}

// Scheduler 驱动两个互不相干的定时任务：
//   - 每个聚合周期扫描一次活跃大学并为每所大学派发一个摘要任务；
//   - 每周一次向外部训练服务发送 fire-and-forget 的全量训练请求。
//
// 两个任务只通过持久化存储间接通信，不共享可变内存状态。
// 调度器从不向上层抛错：所有失败都在 tick 内记录并吞掉。
type Scheduler struct {
	reports    ActiveSource
	dispatcher Dispatcher
	trainer    TrainingTrigger
	opts       Options
	logger     *logger.Logger
	now        func() time.Time
}

// New 创建一个新的调度器。trainer 允许为 nil（未配置训练服务的部署）。
func New(reports ActiveSource, dispatcher Dispatcher, trainer TrainingTrigger, opts Options, log *logger.Logger) *Scheduler {
	if opts.AggregationInterval <= 0 {
		opts.AggregationInterval = 10 * time.Minute
	}
	if opts.ReportWindow <= 0 {
		opts.ReportWindow = 10 * time.Minute
	}
	if opts.TrainingWeekday < time.Sunday || opts.TrainingWeekday > time.Saturday {
		opts.TrainingWeekday = time.Sunday
	}
	if opts.TrainingHour < 0 || opts.TrainingHour > 23 {
		opts.TrainingHour = 4
	}
	return &Scheduler{
		reports:    reports,
		dispatcher: dispatcher,
		trainer:    trainer,
		opts:       opts,
		logger:     log,
		now:        time.Now,
	}
}

// Start 启动两个后台循环，随 ctx 取消而退出。
func (s *Scheduler) Start(ctx context.Context) {
	go s.runAggregationLoop(ctx)
	if s.trainer != nil {
		go s.runTrainingLoop(ctx)
	}
}

// runAggregationLoop 按固定周期执行聚合 tick。
func (s *Scheduler) runAggregationLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.AggregationInterval)
	defer ticker.Stop()

	s.logger.WithPayload(map[string]interface{}{
		"interval": s.opts.AggregationInterval.String(),
		"window":   s.opts.ReportWindow.String(),
	}).Info("聚合调度循环已启动")

	for {
		select {
		case <-ticker.C:
			s.runAggregationTick(ctx)
		case <-ctx.Done():
			s.logger.Info("聚合调度循环已停止")
			return
		}
	}
}

// runAggregationTick 执行一次聚合扫描。
// 单所大学的派发失败只记录日志，绝不阻断同一 tick 内其他大学的处理。
func (s *Scheduler) runAggregationTick(ctx context.Context) {
	traceID := uuid.NewString()
	windowStart := s.now().Add(-s.opts.ReportWindow)

	universityIDs, err := s.reports.ActiveUniversityIDs(windowStart)
	if err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "database_error"}).
			WithPayload(map[string]interface{}{"trace_id": traceID}).
			Error("扫描活跃大学失败")
		return
	}

	if len(universityIDs) == 0 {
		s.logger.Debug("没有任何大学在窗口内有新报告")
		return
	}

	s.logger.WithPayload(map[string]interface{}{
		"trace_id":          traceID,
		"active_university": len(universityIDs),
	}).Info("发现有新报告的活跃大学")

	for _, id := range universityIDs {
		job := &models.SummaryJob{UniversityID: id, TraceID: traceID}
		if err := s.dispatcher.Dispatch(ctx, job); err != nil {
			s.logger.WithError(models.ErrorInfo{Message: err.Error()}).
				WithPayload(map[string]interface{}{
					"trace_id":      traceID,
					"university_id": id,
				}).Error("派发摘要任务失败")
			continue
		}
	}
}

// runTrainingLoop 在每周固定时刻触发一次全量训练。
func (s *Scheduler) runTrainingLoop(ctx context.Context) {
	s.logger.WithPayload(map[string]interface{}{
		"weekday": s.opts.TrainingWeekday.String(),
		"hour":    s.opts.TrainingHour,
	}).Info("每周训练触发循环已启动")

	for {
		next := nextTrainingTime(s.now(), s.opts.TrainingWeekday, s.opts.TrainingHour)
		timer := time.NewTimer(next.Sub(s.now()))

		select {
		case <-timer.C:
			s.runTrainingTick(ctx)
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("每周训练触发循环已停止")
			return
		}
	}
}

// runTrainingTick 发送一次 fire-and-forget 的训练请求。
// 失败只记录日志，下一周的 tick 自然补救。
func (s *Scheduler) runTrainingTick(ctx context.Context) {
	s.logger.Info("开始触发所有大学的每周模型训练")
	if err := s.trainer.TrainAll(ctx); err != nil {
		s.logger.WithError(models.ErrorInfo{Message: err.Error(), Type: "training_error"}).
			Error("每周训练请求失败")
		return
	}
	s.logger.Info("每周训练请求已发送")
}

// nextTrainingTime 计算 now 之后下一个"指定星期 hour 点整 (UTC)"的时刻。
// now 恰好等于触发时刻时返回下一周，避免同一时刻重复触发。
func nextTrainingTime(now time.Time, weekday time.Weekday, hour int) time.Time {
	now = now.UTC()
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, time.UTC)
	daysAhead := (int(weekday) - int(now.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// ParseWeekday 把 "SUN".."SAT" 形式的配置值解析为 time.Weekday。
// 无法识别的值回落到周日。
func ParseWeekday(s string) time.Weekday {
	switch models.DayOfWeek(s) {
	case models.DayMonday:
		return time.Monday
	case models.DayTuesday:
		return time.Tuesday
	case models.DayWednesday:
		return time.Wednesday
	case models.DayThursday:
		return time.Thursday
	case models.DayFriday:
		return time.Friday
	case models.DaySaturday:
		return time.Saturday
	default:
		return time.Sunday
	}
}

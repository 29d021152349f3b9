package scheduler

import (
	"context"

	"CampusEat/backend/go/internal/models"
)

// SummaryProcessor 是摘要引擎的最小接口。
type SummaryProcessor interface {
	ProcessSummary(ctx context.Context, universityID uint) error
}

// LocalDispatcher 在当前进程内同步执行摘要任务。
// 单节点部署或未启用 Kafka 时使用；多副本部署时换成 Kafka 派发器。
type LocalDispatcher struct {
	engine SummaryProcessor
}

// NewLocalDispatcher 创建一个进程内派发器。
func NewLocalDispatcher(engine SummaryProcessor) *LocalDispatcher {
	return &LocalDispatcher{engine: engine}
}

// Dispatch 直接调用引擎处理任务。
func (d *LocalDispatcher) Dispatch(ctx context.Context, job *models.SummaryJob) error {
	return d.engine.ProcessSummary(ctx, job.UniversityID)
}

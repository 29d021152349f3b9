package consumer

import (
	"context"
	"encoding/json"

	"CampusEat/backend/go/internal/models"
	"CampusEat/backend/go/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// SummaryProcessor 是消费端需要的摘要引擎最小接口。
type SummaryProcessor interface {
	ProcessSummary(ctx context.Context, universityID uint) error
}

// SummaryJobConsumer 负责从 Kafka 消费摘要任务并交给引擎执行。
type SummaryJobConsumer struct {
	reader *kafka.Reader
	engine SummaryProcessor
	logger *logger.Logger
}

// NewSummaryJobConsumer 创建一个新的 SummaryJobConsumer。
func NewSummaryJobConsumer(brokers []string, topic, groupID string, engine SummaryProcessor, logger *logger.Logger) *SummaryJobConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &SummaryJobConsumer{reader: reader, engine: engine, logger: logger}
}

// Start 在后台 goroutine 中开始消费摘要任务。
// 单个任务的失败只记录日志并提交位点：摘要任务天然幂等，
// 失败的大学在下一个聚合 tick 会被重新派发，不需要消费端重试。
func (c *SummaryJobConsumer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("摘要任务消费者已停止")
				return
			default:
				msg, err := c.reader.FetchMessage(ctx)
				if err != nil {
					if ctx.Err() == nil {
						c.logger.WithError(models.ErrorInfo{Message: err.Error()}).
							Error("从 Kafka 拉取消息失败")
					}
					continue
				}

				if err := c.handle(ctx, msg); err != nil {
					c.logger.WithError(models.ErrorInfo{Message: err.Error()}).
						WithPayload(map[string]interface{}{
							"topic":     msg.Topic,
							"partition": msg.Partition,
							"offset":    msg.Offset,
						}).Error("处理摘要任务失败")
				}

				if err := c.reader.CommitMessages(ctx, msg); err != nil {
					c.logger.WithError(models.ErrorInfo{Message: err.Error()}).
						Error("提交 Kafka 消费位点失败")
				}
			}
		}
	}()
}

// handle 反序列化一条消息并执行摘要任务。
func (c *SummaryJobConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var job models.SummaryJob
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		return err
	}

	c.logger.WithPayload(map[string]interface{}{
		"trace_id":      job.TraceID,
		"university_id": job.UniversityID,
	}).Info("开始处理摘要任务")

	return c.engine.ProcessSummary(ctx, job.UniversityID)
}

// Close 关闭底层的 Kafka reader。
func (c *SummaryJobConsumer) Close() error {
	return c.reader.Close()
}

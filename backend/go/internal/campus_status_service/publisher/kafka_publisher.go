package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkadb "CampusEat/backend/go/internal/database/kafka"
	"CampusEat/backend/go/internal/models"

	"github.com/segmentio/kafka-go"
)

// SummaryJobTopic 是摘要任务队列使用的 Kafka 主题。
const SummaryJobTopic = "campus_summary_jobs"

// SummaryJobPublisher 封装了向 Kafka 派发摘要任务的逻辑。
// 以大学 ID 作为消息 key，同一所大学的任务落在同一分区、保持派发顺序。
type SummaryJobPublisher struct {
	writer *kafka.Writer
}

// NewSummaryJobPublisher 创建一个新的 SummaryJobPublisher 实例。
func NewSummaryJobPublisher(client *kafkadb.KafkaClient) *SummaryJobPublisher {
	// 为摘要任务主题创建一个新的 writer 实例配置
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      client.Config.Brokers,
		Topic:        SummaryJobTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &SummaryJobPublisher{writer: writer}
}

// Dispatch 将 SummaryJob 序列化为 JSON 并发送到 Kafka。
func (p *SummaryJobPublisher) Dispatch(ctx context.Context, job *models.SummaryJob) error {
	jsonData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal summary job: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(job.UniversityID), 10)),
		Value: jsonData,
	})

	if err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close 关闭底层的 writer 连接。
func (p *SummaryJobPublisher) Close() error {
	return p.writer.Close()
}

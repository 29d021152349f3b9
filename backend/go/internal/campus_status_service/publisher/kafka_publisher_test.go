package publisher

import (
	"testing"

	"CampusEat/backend/go/internal/config"
	kafkadb "CampusEat/backend/go/internal/database/kafka"
)

func TestNewSummaryJobPublisher(t *testing.T) {
	// 连接器只携带配置，writer 由 publisher 自己构建；构建不触网
	client := &kafkadb.KafkaClient{Config: &config.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topics:  []string{SummaryJobTopic},
	}}

	p := NewSummaryJobPublisher(client)
	defer p.Close()

	if p.writer == nil {
		t.Fatal("Expected a configured writer")
	}
	if p.writer.Topic != SummaryJobTopic {
		t.Errorf("Expected writer topic %s, got %s", SummaryJobTopic, p.writer.Topic)
	}
}

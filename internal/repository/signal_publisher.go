package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	"CoinPulse/pkg/kafka"
)

// KafkaSignalPublisher forwards signals and market summaries to Kafka topics
// for downstream consumers (backtesting, dashboards).
type KafkaSignalPublisher struct {
	producer     *kafka.Producer
	signalTopic  string
	summaryTopic string
}

// NewKafkaSignalPublisher creates a publisher on the given producer.
func NewKafkaSignalPublisher(producer *kafka.Producer, signalTopic, summaryTopic string) *KafkaSignalPublisher {
	if signalTopic == "" {
		signalTopic = "coinpulse.signals"
	}
	if summaryTopic == "" {
		summaryTopic = "coinpulse.summaries"
	}
	return &KafkaSignalPublisher{
		producer:     producer,
		signalTopic:  signalTopic,
		summaryTopic: summaryTopic,
	}
}

// PublishSignal keys by symbol so per-symbol ordering is preserved.
func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.signalTopic, []byte(s.Symbol), s)
}

func (p *KafkaSignalPublisher) PublishSummary(ctx context.Context, m *models.MarketSummary) error {
	return p.producer.Publish(ctx, p.summaryTopic, nil, m)
}

func (p *KafkaSignalPublisher) Close() error {
	return p.producer.Close()
}

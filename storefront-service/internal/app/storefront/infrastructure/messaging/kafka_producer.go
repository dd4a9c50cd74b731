package messaging

import (
	"context"
	"fmt"
	"time"

	"storefront/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const serviceName = "storefront-service"

// KafkaProducer публикует события заказов
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer создает синхронный writer; подтверждения ждём от лидера партиции
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// PublishMessage отправляет одно сообщение; key определяет партицию
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewKafkaProduceTimer(serviceName, p.topic)

	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		timer.Error()
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	timer.Success()
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NoopPublisher используется, когда Kafka не настроена
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

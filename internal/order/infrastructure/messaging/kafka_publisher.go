// Package messaging 提供订单领域事件的 Kafka 发布实现
package messaging

import (
	"context"
	"time"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

// eventEnvelope 事件信封，消费方通过 event_type 路由
type eventEnvelope struct {
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// kafkaEventPublisher 是 domain.EventPublisher 接口的 Kafka 实现
type kafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建订单事件发布器
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) domain.EventPublisher {
	return &kafkaEventPublisher{producer: producer, topic: topic}
}

// Publish 实现 domain.EventPublisher.Publish
func (p *kafkaEventPublisher) Publish(ctx context.Context, eventType, key string, event any) error {
	return p.producer.SendMessage(ctx, p.topic, key, eventEnvelope{
		EventType: eventType,
		Timestamp: time.Now(),
		Payload:   event,
	})
}

// Package messaging 联系人变更事件发布
package messaging

import (
	"context"

	"github.com/wyfcoding/contactbook/internal/contact/domain"
	"github.com/wyfcoding/contactbook/pkg/mq"
)

// kafkaPublisher 基于 Kafka 的事件发布者实现
type kafkaPublisher struct {
	producer *mq.KafkaProducer
}

// NewKafkaPublisher 创建 Kafka 事件发布者
func NewKafkaPublisher(producer *mq.KafkaProducer) domain.EventPublisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.producer.SendMessage(ctx, topic, key, event)
}

// nopPublisher 未配置 broker 时的空实现
type nopPublisher struct{}

// NewNopPublisher 创建空事件发布者
func NewNopPublisher() domain.EventPublisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return nil
}

/*
 * @module service/event/kafka_publisher
 * @description Kafka审计事件发布者，将数据集生命周期事件以JSON写入指定topic
 * @architecture 适配器模式 - 封装kafka-go Writer
 * @rules 事件ID作为消息key；event_type写入消息头；写入带超时
 * @dependencies github.com/segmentio/kafka-go
 * @refs service/init.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter kafka.Writer的写入接口
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher Kafka事件发布者
type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
}

// NewKafkaPublisher 创建Kafka发布者
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	slog.Info("Kafka事件发布者已创建", "brokers", brokers, "topic", topic)
	return newKafkaPublisher(writer, topic)
}

func newKafkaPublisher(w MessageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, timeout: 5 * time.Second}
}

// Publish 发送事件
func (k *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.ID),
		Value: value,
		Time:  evt.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("发送事件到topic %s 失败: %w", k.topic, err)
	}
	return nil
}

// Close 关闭生产者
func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

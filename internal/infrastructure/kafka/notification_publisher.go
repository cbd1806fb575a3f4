package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NotificationPublisher は記録済みの通知をユーザーIDをキーにトピックへ書き込む
// 同じユーザーの通知は同じパーティション内で順序が保たれる
type NotificationPublisher struct {
	writer messageWriter
	topic  string
}

func NewNotificationPublisher(brokers []string, topic string) *NotificationPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &NotificationPublisher{writer: writer, topic: topic}
}

func (p *NotificationPublisher) Publish(ctx context.Context, n *notification.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("通知のシリアライズに失敗: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(n.UserID),
		Value: data,
		Time:  n.NotificationDate,
		Headers: []kafka.Header{
			{Key: "notification_type", Value: []byte(n.NotificationType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s への通知配信に失敗: %w", p.topic, err)
	}
	return nil
}

func (p *NotificationPublisher) Close() error {
	return p.writer.Close()
}

var _ notification.Publisher = (*NotificationPublisher)(nil)

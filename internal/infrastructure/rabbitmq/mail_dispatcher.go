package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/mail"
)

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// MailDispatcher はメールジョブを永続JSONメッセージとして永続キューに積む
type MailDispatcher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    channel
	queue string
}

// NewMailDispatcher はブローカーに接続してキューを宣言する
func NewMailDispatcher(url, queue string) (*MailDispatcher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("RabbitMQ接続に失敗しました: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("RabbitMQチャネル作成に失敗: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("キュー %s の宣言に失敗: %w", queue, err)
	}
	return &MailDispatcher{conn: conn, ch: ch, queue: queue}, nil
}

func (d *MailDispatcher) SendMail(ctx context.Context, msg mail.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("メールのシリアライズに失敗: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         msg.Template,
		Body:         body,
	}

	// amqp のチャネルは並行送信に対応していない
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ch.PublishWithContext(ctx, "", d.queue, false, false, pub); err != nil {
		return fmt.Errorf("メール送信に失敗: %w", err)
	}
	return nil
}

func (d *MailDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ch != nil {
		_ = d.ch.Close()
	}
	if d.conn != nil {
		return d.conn.Close()
	}
	return nil
}

var _ mail.Dispatcher = (*MailDispatcher)(nil)

package application

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/mail"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/logger"
)

// NotificationDispatcher は通知を記録してから配信する
// 配信は任意で、失敗はログに残すだけ
type NotificationDispatcher struct {
	repo      notification.Repository
	publisher notification.Publisher
}

func NewNotificationDispatcher(repo notification.Repository, publisher notification.Publisher) *NotificationDispatcher {
	return &NotificationDispatcher{repo: repo, publisher: publisher}
}

func (d *NotificationDispatcher) Create(ctx context.Context, n *notification.Notification) error {
	if err := d.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("通知の記録に失敗: %w", err)
	}
	if d.publisher == nil {
		return nil
	}
	if err := d.publisher.Publish(ctx, n); err != nil {
		logger.Warn("通知配信エラー",
			zap.String("notification_id", n.ID), logger.UserID(n.UserID), zap.Error(err))
	}
	return nil
}

// LogMailDispatcher はメールキュー未設定時の代替
type LogMailDispatcher struct{}

func (LogMailDispatcher) SendMail(_ context.Context, msg mail.Message) error {
	logger.Info("メールキュー無効のためメールを破棄",
		zap.String("to", msg.To), zap.String("template", msg.Template), zap.String("subject", msg.Subject))
	return nil
}

var (
	_ notification.Dispatcher = (*NotificationDispatcher)(nil)
	_ mail.Dispatcher         = LogMailDispatcher{}
)

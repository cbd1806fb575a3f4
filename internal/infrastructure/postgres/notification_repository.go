package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/notification"
)

type NotificationRepository struct{ db *sqlx.DB }

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	query := `INSERT INTO notifications (user_id, notification_type, notification_date, message, is_read)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowContext(ctx, query, n.UserID, string(n.NotificationType), n.NotificationDate, n.Message, n.IsRead).Scan(&n.ID); err != nil {
		return fmt.Errorf("通知作成に失敗: %w", err)
	}
	return nil
}

var _ notification.Repository = (*NotificationRepository)(nil)

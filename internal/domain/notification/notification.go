package notification

import (
	"context"
	"time"
)

type Type string

const (
	TypeReservationConfirmed Type = "RESERVATION_CONFIRMED"
	TypeReservationModified  Type = "RESERVATION_MODIFIED"
	TypeReservationCancelled Type = "RESERVATION_CANCELLED"
	TypeWithdrawal           Type = "WITHDRAWAL"
	TypeRefund               Type = "REFUND"
	TypeDeposit              Type = "DEPOSIT"
)

// Notification はユーザー宛てのアプリ内通知を表す
type Notification struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	NotificationType Type      `json:"notification_type"`
	NotificationDate time.Time `json:"notification_date"`
	Message          string    `json:"message"`
	IsRead           bool      `json:"is_read"`
}

func New(userID string, typ Type, message string) *Notification {
	return &Notification{
		UserID:           userID,
		NotificationType: typ,
		NotificationDate: time.Now(),
		Message:          message,
	}
}

// Dispatcher は通知を記録して配信する
type Dispatcher interface {
	Create(ctx context.Context, n *Notification) error
}

// Repository は通知を保存する
type Repository interface {
	Create(ctx context.Context, n *Notification) error
}

// Publisher は記録済みの通知を配信チャネルに送る
type Publisher interface {
	Publish(ctx context.Context, n *Notification) error
}

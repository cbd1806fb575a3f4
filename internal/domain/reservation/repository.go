package reservation

import (
	"context"
	"time"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成してIDを設定する
	Create(ctx context.Context, reservation *Reservation) error

	GetByID(ctx context.Context, id string) (*Reservation, error)

	List(ctx context.Context, limit, offset int) ([]*Reservation, error)

	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Reservation, error)

	// GetByStartRange は開始時刻が [start, end] に含まれる予約を取得する
	GetByStartRange(ctx context.Context, start, end time.Time) ([]*Reservation, error)

	ListRecent(ctx context.Context, limit int) ([]*Reservation, error)

	// FindOverlapping は start_time < end AND end_time > start を満たす有効な予約を取得する
	// excludeID が空でなければその予約を除外する
	FindOverlapping(ctx context.Context, aircraftID string, start, end time.Time, excludeID string) ([]*Reservation, error)

	// GetUnsettled は指定時刻より前に作成された支払い未紐付けの確定予約を取得する
	GetUnsettled(ctx context.Context, createdBefore time.Time, limit int) ([]*Reservation, error)

	Update(ctx context.Context, reservation *Reservation) error

	// LinkPayment は予約を支払った引き落としを記録する
	LinkPayment(ctx context.Context, id, paymentID string) error

	Delete(ctx context.Context, id string) error
}

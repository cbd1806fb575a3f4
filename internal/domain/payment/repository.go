package payment

import (
	"context"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/transaction"
)

// Repository は支払い台帳のインターフェース
type Repository interface {
	// Create は支払いを作成する（トランザクション必須、参照重複は ErrReferenceExists）
	Create(ctx context.Context, tx transaction.Tx, payment *Payment) error

	GetByID(ctx context.Context, id string) (*Payment, error)

	GetByReference(ctx context.Context, reference string) (*Payment, error)

	// FindCompletedWithdrawal は参照を持たず金額が amountCents に一致する
	// ユーザーの最も古い完了済み引き落としを取得する
	FindCompletedWithdrawal(ctx context.Context, userID string, amountCents int64) (*Payment, error)

	// MarkRefunded は返金済み状態を保存する（トランザクション必須）
	// 既に完了状態でなければ ErrAlreadyRefunded を返す
	MarkRefunded(ctx context.Context, tx transaction.Tx, payment *Payment) error

	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*Payment, error)
}

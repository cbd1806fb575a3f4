package user

import (
	"context"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/transaction"
)

// Repository はユーザーリポジトリのインターフェース
type Repository interface {
	// GetByID はIDからユーザーを取得する（withLicenses が true のときだけライセンスも読み込む）
	GetByID(ctx context.Context, id string, withLicenses bool) (*User, error)

	// AdjustBalance は残高に deltaCents を加算して新しい残高を返す（トランザクション必須）
	// 残高が負になる引き落としは ErrInsufficientBalance を返し何も変更しない
	AdjustBalance(ctx context.Context, tx transaction.Tx, id string, deltaCents int64) (float64, error)

	// AdjustFlightHours は飛行時間に delta（負も可）を加算する
	AdjustFlightHours(ctx context.Context, id string, delta float64) error
}

package aircraft

import "context"

// Repository は機体リポジトリのインターフェース
type Repository interface {
	Create(ctx context.Context, aircraft *Aircraft) error

	// GetByID はIDから機体を取得する（存在しなければ ErrAircraftNotFound）
	GetByID(ctx context.Context, id string) (*Aircraft, error)

	List(ctx context.Context, limit, offset int) ([]*Aircraft, error)

	Update(ctx context.Context, aircraft *Aircraft) error
}

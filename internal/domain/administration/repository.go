package administration

import "context"

// Repository は管理設定リポジトリのインターフェース
// FindAll が最初に返すレコードを正とする
type Repository interface {
	FindAll(ctx context.Context) ([]*Settings, error)

	// Save は正となるレコードのライセンス一覧を置き換える（存在しなければ作成する）
	Save(ctx context.Context, settings *Settings) error
}

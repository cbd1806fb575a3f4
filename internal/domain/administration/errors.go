package administration

import "errors"

// Administration ドメインのエラー定義
var (
	ErrSettingsNotFound = errors.New("管理設定が見つかりません")
)

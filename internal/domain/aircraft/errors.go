package aircraft

import "errors"

// Aircraft ドメインのエラー定義
var (
	ErrAircraftNotFound         = errors.New("機体が見つかりません")
	ErrRegistrationRequired     = errors.New("登録記号は必須です")
	ErrInvalidHourlyCost        = errors.New("時間単価は0以上である必要があります")
	ErrRegistrationAlreadyTaken = errors.New("登録記号が既に存在します")
)

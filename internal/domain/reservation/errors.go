package reservation

import "errors"

// Reservation ドメインのエラー定義
var (
	ErrReservationNotFound = errors.New("予約が見つかりません")
	ErrTimeSlotConflict    = errors.New("指定された時間帯は既に予約されています")
	ErrInvalidTimeWindow   = errors.New("終了時刻は開始時刻より後である必要があります")
	ErrAircraftIDRequired  = errors.New("機体IDは必須です")
	ErrUserIDRequired      = errors.New("ユーザーIDは必須です")
	ErrAircraftBusy        = errors.New("機体は他のリクエストで予約処理中です")
)

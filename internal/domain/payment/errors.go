package payment

import "errors"

// Payment ドメインのエラー定義
var (
	ErrPaymentNotFound = errors.New("返金対象の支払いが見つかりません")
	ErrUserIDRequired  = errors.New("ユーザーIDは必須です")
	ErrInvalidAmount   = errors.New("金額は0以上である必要があります")
	ErrAlreadyRefunded = errors.New("支払いは既に返金されています")
	ErrNotRefundable   = errors.New("返金できるのは引き落としのみです")
	ErrReferenceExists = errors.New("同じ参照の支払いが既に存在します")
	ErrPaymentNotOwned = errors.New("支払いはこのユーザーのものではありません")
)

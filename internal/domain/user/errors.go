package user

import "errors"

// User ドメインのエラー定義
var (
	ErrUserNotFound        = errors.New("ユーザーが見つかりません")
	ErrInsufficientBalance = errors.New("残高が不足しています")
)

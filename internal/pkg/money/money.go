// Package money は金額を整数のセントに変換して残高計算の誤差を防ぐ
package money

import "math"

// ToCents は金額を最も近いセントに丸める
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents はセントを金額に戻す
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// Add は2つの金額をセント単位で加算する
func Add(a, b float64) float64 {
	return FromCents(ToCents(a) + ToCents(b))
}

// Sub は a から b をセント単位で減算する
func Sub(a, b float64) float64 {
	return FromCents(ToCents(a) - ToCents(b))
}

package application

import (
	"errors"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
)

var (
	// ErrUnauthorizedLicense はライセンスなしと許可種別なしの両方を表す
	ErrUnauthorizedLicense = errors.New("許可されたパイロットライセンスを保有していません")
	ErrInsufficientBalance = user.ErrInsufficientBalance
)

package application

import (
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/pkg/money"
)

// EligibilityValidator は読み込み済みのユーザーが予約できるかを判定する（I/Oなし）
type EligibilityValidator struct{}

// Validate はライセンス、残高の順に検証する
func (v EligibilityValidator) Validate(u *user.User, policy administration.LicensePolicy, cost float64) error {
	if err := v.ValidateLicenses(u, policy); err != nil {
		return err
	}
	if money.ToCents(cost) > money.ToCents(u.AccountBalance) {
		return ErrInsufficientBalance
	}
	return nil
}

func (v EligibilityValidator) ValidateLicenses(u *user.User, policy administration.LicensePolicy) error {
	if len(u.Licenses) == 0 {
		return ErrUnauthorizedLicense
	}
	if !policy.Authorizes(u.LicenseTypes()) {
		return ErrUnauthorizedLicense
	}
	return nil
}

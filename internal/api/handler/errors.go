package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/application"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/user"
)

const (
	userIDHeader = "X-User-ID"
	defaultLimit = 20
	maxLimit     = 100
)

var (
	notFoundErrors = []error{
		reservation.ErrReservationNotFound,
		aircraft.ErrAircraftNotFound,
		user.ErrUserNotFound,
		administration.ErrSettingsNotFound,
		payment.ErrPaymentNotFound,
	}
	conflictErrors = []error{
		reservation.ErrTimeSlotConflict,
		reservation.ErrAircraftBusy,
		aircraft.ErrRegistrationAlreadyTaken,
		payment.ErrAlreadyRefunded,
		payment.ErrReferenceExists,
	}
	badRequestErrors = []error{
		reservation.ErrInvalidTimeWindow,
		reservation.ErrAircraftIDRequired,
		reservation.ErrUserIDRequired,
		aircraft.ErrRegistrationRequired,
		aircraft.ErrInvalidHourlyCost,
		payment.ErrUserIDRequired,
		payment.ErrInvalidAmount,
		application.ErrUnauthorizedLicense,
		application.ErrInsufficientBalance,
	}
)

// mapError はドメインエラーをHTTPエラーに変換する（未知のエラーは500）
func mapError(err error) error {
	switch {
	case isAny(err, notFoundErrors):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case isAny(err, conflictErrors):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case isAny(err, badRequestErrors):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

func pagination(c echo.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	offset, _ = strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

package handler

import (
	"context"
	"time"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/application"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
)

type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error)
	UpdateReservation(ctx context.Context, input application.UpdateReservationInput) (*reservation.Reservation, error)
	CancelReservation(ctx context.Context, id string) error
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	ListReservations(ctx context.Context, limit, offset int) ([]*reservation.Reservation, error)
	GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]*reservation.Reservation, error)
	ListRecent(ctx context.Context, limit int) ([]*reservation.Reservation, error)
}

type AircraftServiceInterface interface {
	CreateAircraft(ctx context.Context, input application.CreateAircraftInput) (*aircraft.Aircraft, error)
	GetAircraft(ctx context.Context, id string) (*aircraft.Aircraft, error)
	ListAircraft(ctx context.Context, limit, offset int) ([]*aircraft.Aircraft, error)
	UpdateHourlyCost(ctx context.Context, id string, hourlyCost float64) (*aircraft.Aircraft, error)
}

type PaymentServiceInterface interface {
	Deposit(ctx context.Context, input application.DepositInput) (*payment.Payment, error)
	ListUserPayments(ctx context.Context, userID string, limit, offset int) ([]*payment.Payment, error)
}

type AdministrationServiceInterface interface {
	GetSettings(ctx context.Context) (*administration.Settings, error)
	UpdateSettings(ctx context.Context, pilotLicenses []string) (*administration.Settings, error)
}

var (
	_ ReservationServiceInterface    = (*application.ReservationService)(nil)
	_ AircraftServiceInterface       = (*application.AircraftService)(nil)
	_ PaymentServiceInterface        = (*application.SettlementService)(nil)
	_ AdministrationServiceInterface = (*application.AdministrationService)(nil)
)

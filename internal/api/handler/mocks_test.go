package handler

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/application"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
)

// MockReservationService implements ReservationServiceInterface
type MockReservationService struct {
	mock.Mock
}

func (m *MockReservationService) CreateReservation(ctx context.Context, input application.CreateReservationInput) (*reservation.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) UpdateReservation(ctx context.Context, input application.UpdateReservationInput) (*reservation.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReservationService) GetReservation(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) ListReservations(ctx context.Context, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) ListByDateRange(ctx context.Context, start, end time.Time) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationService) ListRecent(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

// MockAircraftService implements AircraftServiceInterface
type MockAircraftService struct {
	mock.Mock
}

func (m *MockAircraftService) CreateAircraft(ctx context.Context, input application.CreateAircraftInput) (*aircraft.Aircraft, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aircraft.Aircraft), args.Error(1)
}

func (m *MockAircraftService) GetAircraft(ctx context.Context, id string) (*aircraft.Aircraft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aircraft.Aircraft), args.Error(1)
}

func (m *MockAircraftService) ListAircraft(ctx context.Context, limit, offset int) ([]*aircraft.Aircraft, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*aircraft.Aircraft), args.Error(1)
}

func (m *MockAircraftService) UpdateHourlyCost(ctx context.Context, id string, hourlyCost float64) (*aircraft.Aircraft, error) {
	args := m.Called(ctx, id, hourlyCost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aircraft.Aircraft), args.Error(1)
}

// MockPaymentService implements PaymentServiceInterface
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Deposit(ctx context.Context, input application.DepositInput) (*payment.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentService) ListUserPayments(ctx context.Context, userID string, limit, offset int) ([]*payment.Payment, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

// MockAdministrationService implements AdministrationServiceInterface
type MockAdministrationService struct {
	mock.Mock
}

func (m *MockAdministrationService) GetSettings(ctx context.Context) (*administration.Settings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*administration.Settings), args.Error(1)
}

func (m *MockAdministrationService) UpdateSettings(ctx context.Context, pilotLicenses []string) (*administration.Settings, error) {
	args := m.Called(ctx, pilotLicenses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*administration.Settings), args.Error(1)
}

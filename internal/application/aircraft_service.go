package application

import (
	"context"
	"time"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
)

type AircraftService struct {
	aircraftRepo aircraft.Repository
}

func NewAircraftService(repo aircraft.Repository) *AircraftService {
	return &AircraftService{aircraftRepo: repo}
}

type CreateAircraftInput struct {
	RegistrationNumber string
	Model              string
	HourlyCost         float64
}

func (s *AircraftService) CreateAircraft(ctx context.Context, input CreateAircraftInput) (*aircraft.Aircraft, error) {
	a := aircraft.NewAircraft(input.RegistrationNumber, input.Model, input.HourlyCost)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.aircraftRepo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AircraftService) GetAircraft(ctx context.Context, id string) (*aircraft.Aircraft, error) {
	return s.aircraftRepo.GetByID(ctx, id)
}

func (s *AircraftService) ListAircraft(ctx context.Context, limit, offset int) ([]*aircraft.Aircraft, error) {
	return s.aircraftRepo.List(ctx, limit, offset)
}

// UpdateHourlyCost は新規予約と既存予約の返金に使う時間単価を変更する
func (s *AircraftService) UpdateHourlyCost(ctx context.Context, id string, hourlyCost float64) (*aircraft.Aircraft, error) {
	a, err := s.aircraftRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.HourlyCost = hourlyCost
	a.UpdatedAt = time.Now()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.aircraftRepo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

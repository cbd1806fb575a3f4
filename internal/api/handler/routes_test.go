package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
)

func TestHandlers_Register(t *testing.T) {
	reservations := new(MockReservationService)
	reservations.On("ListRecent", mock.Anything, 3).Return([]*reservation.Reservation{}, nil)
	reservations.On("GetReservation", mock.Anything, "res-123").Return(sampleReservation(), nil)
	reservations.On("CancelReservation", mock.Anything, "res-123").Return(nil)

	e := NewTestEcho()
	Handlers{
		Health:         NewHealthHandler(),
		Reservation:    NewReservationHandler(reservations),
		Aircraft:       NewAircraftHandler(new(MockAircraftService)),
		Payment:        NewPaymentHandler(new(MockPaymentService)),
		Administration: NewAdministrationHandler(new(MockAdministrationService)),
	}.Register(e.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health", http.StatusOK},
		{http.MethodGet, "/api/v1/reservations/recent?limit=3", http.StatusOK},
		{http.MethodGet, "/api/v1/reservations/res-123", http.StatusOK},
		{http.MethodDelete, "/api/v1/reservations/res-123", http.StatusNoContent},
		{http.MethodPost, "/api/v1/reservations", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	reservations.AssertExpectations(t)
}

package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/application"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/reservation"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type CreateReservationRequest struct {
	AircraftID           string     `json:"aircraft_id" validate:"required"`
	StartTime            time.Time  `json:"start_time" validate:"required"`
	EndTime              time.Time  `json:"end_time" validate:"required"`
	ReservationDate      *time.Time `json:"reservation_date,omitempty"`
	EstimatedFlightHours *float64   `json:"estimated_flight_hours,omitempty" validate:"omitempty,gte=0"`
	Purpose              string     `json:"purpose,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	FlightCategory       string     `json:"flight_category,omitempty"`
}

// UpdateReservationRequest は変更するフィールドだけを持つ
type UpdateReservationRequest struct {
	AircraftID           *string    `json:"aircraft_id,omitempty" validate:"omitempty,min=1"`
	StartTime            *time.Time `json:"start_time,omitempty"`
	EndTime              *time.Time `json:"end_time,omitempty"`
	ReservationDate      *time.Time `json:"reservation_date,omitempty"`
	EstimatedFlightHours *float64   `json:"estimated_flight_hours,omitempty" validate:"omitempty,gte=0"`
	Purpose              *string    `json:"purpose,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	FlightCategory       *string    `json:"flight_category,omitempty"`
}

type ReservationResponse struct {
	ID                   string    `json:"id"`
	AircraftID           string    `json:"aircraft_id"`
	UserID               string    `json:"user_id"`
	StartTime            time.Time `json:"start_time"`
	EndTime              time.Time `json:"end_time"`
	ReservationDate      time.Time `json:"reservation_date"`
	EstimatedFlightHours *float64  `json:"estimated_flight_hours,omitempty"`
	Purpose              string    `json:"purpose,omitempty"`
	Notes                string    `json:"notes,omitempty"`
	FlightCategory       string    `json:"flight_category,omitempty"`
	Status               string    `json:"status"`
	PaymentID            string    `json:"payment_id,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID: r.ID, AircraftID: r.AircraftID, UserID: r.UserID,
		StartTime: r.StartTime, EndTime: r.EndTime, ReservationDate: r.ReservationDate,
		EstimatedFlightHours: r.EstimatedFlightHours,
		Purpose:              r.Purpose, Notes: r.Notes, FlightCategory: r.FlightCategory,
		Status: string(r.Status), PaymentID: r.PaymentID, CreatedAt: r.CreatedAt,
	}
}

func toReservationResponses(items []*reservation.Reservation) []ReservationResponse {
	resp := make([]ReservationResponse, len(items))
	for i, r := range items {
		resp[i] = toReservationResponse(r)
	}
	return resp
}

// Create は X-User-ID のユーザーで機体を予約する
func (h *ReservationHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get(userIDHeader)
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDは必須です")
	}
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.CreateReservation(c.Request().Context(), application.CreateReservationInput{
		AircraftID:           req.AircraftID,
		UserID:               userID,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		ReservationDate:      req.ReservationDate,
		EstimatedFlightHours: req.EstimatedFlightHours,
		Purpose:              req.Purpose,
		Notes:                req.Notes,
		FlightCategory:       req.FlightCategory,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

func (h *ReservationHandler) GetByID(c echo.Context) error {
	r, err := h.service.GetReservation(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

func (h *ReservationHandler) List(c echo.Context) error {
	limit, offset := pagination(c)
	items, err := h.service.ListReservations(c.Request().Context(), limit, offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponses(items))
}

func (h *ReservationHandler) ListRecent(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := h.service.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponses(items))
}

// ListByDateRange は開始時刻が [start, end] に含まれる予約を返す（RFC3339形式）
func (h *ReservationHandler) ListByDateRange(c echo.Context) error {
	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start はRFC3339形式で指定してください")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end はRFC3339形式で指定してください")
	}
	items, err := h.service.ListByDateRange(c.Request().Context(), start, end)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponses(items))
}

func (h *ReservationHandler) ListByUser(c echo.Context) error {
	limit, offset := pagination(c)
	items, err := h.service.GetUserReservations(c.Request().Context(), c.Param("user_id"), limit, offset)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponses(items))
}

func (h *ReservationHandler) Update(c echo.Context) error {
	var req UpdateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	r, err := h.service.UpdateReservation(c.Request().Context(), application.UpdateReservationInput{
		ID:                   c.Param("id"),
		AircraftID:           req.AircraftID,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		ReservationDate:      req.ReservationDate,
		EstimatedFlightHours: req.EstimatedFlightHours,
		Purpose:              req.Purpose,
		Notes:                req.Notes,
		FlightCategory:       req.FlightCategory,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Cancel は返金して予約を削除する
func (h *ReservationHandler) Cancel(c echo.Context) error {
	if err := h.service.CancelReservation(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

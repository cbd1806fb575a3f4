package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/application"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/aircraft"
)

type AircraftHandler struct {
	service AircraftServiceInterface
}

func NewAircraftHandler(s AircraftServiceInterface) *AircraftHandler {
	return &AircraftHandler{service: s}
}

type CreateAircraftRequest struct {
	RegistrationNumber string  `json:"registration_number" validate:"required,max=32"`
	Model              string  `json:"model" validate:"max=128"`
	HourlyCost         float64 `json:"hourly_cost" validate:"gte=0"`
}

type UpdateHourlyCostRequest struct {
	HourlyCost *float64 `json:"hourly_cost" validate:"required,gte=0"`
}

type AircraftResponse struct {
	ID                 string    `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	Model              string    `json:"model"`
	HourlyCost         float64   `json:"hourly_cost"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toAircraftResponse(a *aircraft.Aircraft) AircraftResponse {
	return AircraftResponse{
		ID: a.ID, RegistrationNumber: a.RegistrationNumber, Model: a.Model,
		HourlyCost: a.HourlyCost, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

func (h *AircraftHandler) Create(c echo.Context) error {
	var req CreateAircraftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.service.CreateAircraft(c.Request().Context(), application.CreateAircraftInput{
		RegistrationNumber: req.RegistrationNumber, Model: req.Model, HourlyCost: req.HourlyCost,
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, toAircraftResponse(a))
}

func (h *AircraftHandler) GetByID(c echo.Context) error {
	a, err := h.service.GetAircraft(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toAircraftResponse(a))
}

func (h *AircraftHandler) List(c echo.Context) error {
	limit, offset := pagination(c)
	items, err := h.service.ListAircraft(c.Request().Context(), limit, offset)
	if err != nil {
		return mapError(err)
	}
	resp := make([]AircraftResponse, len(items))
	for i, a := range items {
		resp[i] = toAircraftResponse(a)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AircraftHandler) UpdateHourlyCost(c echo.Context) error {
	var req UpdateHourlyCostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	a, err := h.service.UpdateHourlyCost(c.Request().Context(), c.Param("id"), *req.HourlyCost)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toAircraftResponse(a))
}

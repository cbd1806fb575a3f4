package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/administration"
)

type AdministrationHandler struct {
	service AdministrationServiceInterface
}

func NewAdministrationHandler(s AdministrationServiceInterface) *AdministrationHandler {
	return &AdministrationHandler{service: s}
}

type UpdateSettingsRequest struct {
	PilotLicenses []string `json:"pilot_licenses" validate:"required,dive,required"`
}

type SettingsResponse struct {
	ID            string   `json:"id"`
	PilotLicenses []string `json:"pilot_licenses"`
}

func toSettingsResponse(s *administration.Settings) SettingsResponse {
	licenses := s.PilotLicenses
	if licenses == nil {
		licenses = []string{}
	}
	return SettingsResponse{ID: s.ID, PilotLicenses: licenses}
}

func (h *AdministrationHandler) Get(c echo.Context) error {
	s, err := h.service.GetSettings(c.Request().Context())
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toSettingsResponse(s))
}

// Update は許可パイロットライセンス一覧を置き換える
func (h *AdministrationHandler) Update(c echo.Context) error {
	var req UpdateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	s, err := h.service.UpdateSettings(c.Request().Context(), req.PilotLicenses)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, toSettingsResponse(s))
}

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-aeroclub-reservation/internal/application"
	"github.com/sanosuguru/go-aeroclub-reservation/internal/domain/payment"
)

type PaymentHandler struct {
	service PaymentServiceInterface
}

func NewPaymentHandler(s PaymentServiceInterface) *PaymentHandler {
	return &PaymentHandler{service: s}
}

type DepositRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	Method string  `json:"method" validate:"omitempty,oneof=CARD CASH ACCOUNT_BALANCE"`
}

type PaymentResponse struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Amount     float64    `json:"amount"`
	Method     string     `json:"method"`
	Type       string     `json:"type"`
	Status     string     `json:"status"`
	Reference  string     `json:"reference,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
}

func toPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID: p.ID, UserID: p.UserID, Amount: p.Amount,
		Method: string(p.Method), Type: string(p.Type), Status: string(p.Status),
		Reference: p.Reference, CreatedAt: p.CreatedAt, RefundedAt: p.RefundedAt,
	}
}

// ListByUser はユーザーの支払い履歴を新しい順に返す
func (h *PaymentHandler) ListByUser(c echo.Context) error {
	limit, offset := pagination(c)
	items, err := h.service.ListUserPayments(c.Request().Context(), c.Param("user_id"), limit, offset)
	if err != nil {
		return mapError(err)
	}
	resp := make([]PaymentResponse, len(items))
	for i, p := range items {
		resp[i] = toPaymentResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) Deposit(c echo.Context) error {
	var req DepositRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.Deposit(c.Request().Context(), application.DepositInput{
		UserID: c.Param("user_id"), Amount: req.Amount, Method: payment.Method(req.Method),
	})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, toPaymentResponse(p))
}

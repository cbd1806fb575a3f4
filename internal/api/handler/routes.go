package handler

import "github.com/labstack/echo/v4"

type Handlers struct {
	Health         *HealthHandler
	Reservation    *ReservationHandler
	Aircraft       *AircraftHandler
	Payment        *PaymentHandler
	Administration *AdministrationHandler
}

// Register は全エンドポイントを g に登録する
func (h Handlers) Register(g *echo.Group) {
	g.GET("/health", h.Health.Check)

	g.POST("/reservations", h.Reservation.Create)
	g.GET("/reservations", h.Reservation.List)
	g.GET("/reservations/recent", h.Reservation.ListRecent)
	g.GET("/reservations/range", h.Reservation.ListByDateRange)
	g.GET("/reservations/:id", h.Reservation.GetByID)
	g.PATCH("/reservations/:id", h.Reservation.Update)
	g.DELETE("/reservations/:id", h.Reservation.Cancel)

	g.GET("/users/:user_id/reservations", h.Reservation.ListByUser)
	g.GET("/users/:user_id/payments", h.Payment.ListByUser)
	g.POST("/users/:user_id/deposits", h.Payment.Deposit)

	g.POST("/aircraft", h.Aircraft.Create)
	g.GET("/aircraft", h.Aircraft.List)
	g.GET("/aircraft/:id", h.Aircraft.GetByID)
	g.PATCH("/aircraft/:id/hourly-cost", h.Aircraft.UpdateHourlyCost)

	g.GET("/administration/settings", h.Administration.Get)
	g.PUT("/administration/settings", h.Administration.Update)
}

package server

import (
	"app/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	h.Orders.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Reviews.RegisterRoutes(e, cfg)
	h.AdminOrders.RegisterRoutes(e, cfg)
	h.AdminReviews.RegisterRoutes(e, cfg)
}

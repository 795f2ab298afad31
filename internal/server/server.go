package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Orders       *handler.OrderHandler
	Cart         *handler.CartHandler
	Reviews      *handler.ReviewHandler
	AdminOrders  *handler.AdminOrderHandler
	AdminReviews *handler.AdminReviewHandler
}

func Start(addr string, cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	RegisterRoutes(e, cfg, h)
	return e.Start(addr)
}

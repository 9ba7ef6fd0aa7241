package server

import (
	"net/http"

	"kasir/internal/middleware"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, h Handlers, db Pinger) {
	e.GET("/health", healthHandler(db))

	h.Product.RegisterRoutes(e)
	//カートと会計は同じセッションを触るので直列に
	h.Cart.RegisterRoutes(e, middleware.SessionLock(middleware.NewSessionSemaphore()))
	h.Sale.RegisterRoutes(e)
}

func healthHandler(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			c.Set(middleware.CtxErrorKey, err)
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	}
}

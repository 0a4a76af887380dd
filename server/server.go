package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// New builds an echo instance with the standard middleware stack and the
// handler's routes mounted. The caller owns starting and shutting it down.
func New(handler *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	handler.Register(e)
	return e
}

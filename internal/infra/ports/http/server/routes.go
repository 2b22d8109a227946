package server

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/qrave1/CallRelay/internal/application/config"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/handlers"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	pagesHandler *handlers.PagesHandler,
	iceHandler *handlers.IceHandler,
	reportHandler *handlers.ReportHandler,
	statsHandler *handlers.StatsHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.Recover())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{cfg.AllowedOrigin},
	}))

	e.GET("/", pagesHandler.Index)
	e.GET("/interviewer", pagesHandler.Interviewer)
	e.GET("/candidate", pagesHandler.Candidate)

	e.GET("/ws", wsHandler.Handle)

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ice", iceHandler.IceServers)
			v1.POST("/report", reportHandler.Report)
			v1.GET("/stats", statsHandler.Stats)
		}
	}

	e.Static("/", cfg.StaticDir)

	return e
}

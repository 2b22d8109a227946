package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrave1/CallRelay/internal/application/config"
	"github.com/qrave1/CallRelay/internal/application/constant"
	"github.com/qrave1/CallRelay/internal/application/logger"
	"github.com/qrave1/CallRelay/internal/application/metric"
	"github.com/qrave1/CallRelay/internal/infra/adapters/memory"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/handlers"
	"github.com/qrave1/CallRelay/internal/infra/ports/http/server"
	"github.com/qrave1/CallRelay/internal/infra/ports/turn"
	"github.com/qrave1/CallRelay/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	log, logCloser, err := logger.New(cfg.Log)
	if err != nil {
		slog.Error("init logger", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer logCloser.Close()

	slog.SetDefault(log)

	connRegistry := memory.NewConnectionRegistry()
	roomDirectory := memory.NewRoomDirectory()
	wsConnRepo := memory.NewWSConnectionRepository(cfg.WS)

	presenceUsecase := usecase.NewPresenceUsecase(roomDirectory, wsConnRepo)
	signalingUsecase := usecase.NewSignalingUsecase(cfg.Relay, connRegistry, roomDirectory, wsConnRepo, presenceUsecase)

	routerCtx, routerCancel := context.WithCancel(context.Background())
	defer routerCancel()

	go signalingUsecase.Run(routerCtx)

	pagesHandler := handlers.NewPagesHandler(cfg.StaticDir)
	iceHandler := handlers.NewIceHandler(cfg)
	reportHandler := handlers.NewReportHandler()
	statsHandler := handlers.NewStatsHandler(connRegistry, roomDirectory)
	wsHandler := handlers.NewWebSocketHandler(cfg, signalingUsecase, wsConnRepo)

	echoSrv := server.New(cfg, pagesHandler, iceHandler, reportHandler, statsHandler, wsHandler)

	metricsSrv := metric.NewServer()

	if cfg.Turn.Enabled {
		turnSrv, err := turn.New(cfg.Turn, cfg.Coturn.Secret)
		if err != nil {
			slog.Error("start TURN server", slog.Any(constant.Error, err))
			os.Exit(1)
		}
		defer turnSrv.Close()
	}

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		slog.Info("HTTP server starting", slog.String(constant.Addr, ":"+cfg.Port))
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	// Graceful shutdown
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}

	// роутер останавливаем последним, чтобы успели уйти disconnect'ы закрытых соединений
	routerCancel()
}

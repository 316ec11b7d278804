package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lmittmann/tint"

	"durak/internal/app"
	"durak/internal/bot"
	"durak/internal/config"
	httpadapter "durak/internal/ports/http"
	"durak/internal/store"
)

func main() {
	srv, err := config.LoadServer()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(srv)
	slog.SetDefault(logger)

	gameCfg, err := srv.Game()
	if err != nil {
		logger.Error("failed to load game config", "path", srv.ConfigPath, "error", err)
		os.Exit(1)
	}

	var roster *bot.Roster
	if gameCfg.BotIdentitiesPath != "" {
		roster, err = bot.LoadRoster(gameCfg.BotIdentitiesPath)
		if err != nil {
			logger.Warn("could not load bot identities", "path", gameCfg.BotIdentitiesPath, "error", err)
		}
	}

	svc, err := app.NewService(app.Deps{
		Store:  store.NewMemory(nil),
		RNG:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Roster: roster,
		Logger: logger,
	}, gameCfg)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(httpadapter.RequestIDMiddleware())
	e.Use(httpadapter.LoggingMiddleware(logger))

	handler := httpadapter.NewHandler(svc, logger)
	handler.Register(e)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go svc.RunReaper(ctx)

	go func() {
		logger.Info("starting server",
			"addr", srv.HTTPAddr,
			"session_ttl", gameCfg.SessionTTL(),
		)
		if err := e.Start(srv.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func newLogger(srv config.Server) *slog.Logger {
	if srv.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: srv.LogLevel}))
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      srv.LogLevel,
		TimeFormat: time.Kitchen,
	}))
}

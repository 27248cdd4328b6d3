package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"tonmaster/internal/config"
	"tonmaster/internal/httpapi"
	"tonmaster/internal/logging"
	"tonmaster/internal/session"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir, envName)
	if err != nil {
		return err
	}
	logger := logging.Init(logging.Options{
		Component: cfg.App.Name,
		File:      cfg.App.LogFile,
		Level:     cfg.App.LogLevel,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, closeSrc := newScenarioSource(ctx, cfg, logger)
	defer closeSrc()

	policy, err := cfg.Policy()
	if err != nil {
		return err
	}
	ctl := session.New(cfg.Seed(time.Now()), src, policy, session.WithLogger(logging.New("session")))

	gin.SetMode(gin.ReleaseMode)
	router := httpapi.NewRouter(httpapi.NewGameHandler(ctl), logging.New("http"))
	srv := &http.Server{
		Addr:         cfg.App.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tonmaster listening", "addr", cfg.App.HTTPAddr, "env", envName)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/htdinh/tictac/internal/log"
	"github.com/htdinh/tictac/internal/store"
	"github.com/htdinh/tictac/internal/tracker"
)

// Run opens the store, wires the tracker behind HTTP handlers and
// serves until interrupted.
func Run(cfg Config, logger *log.Logger) error {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	settings, err := tracker.NewSettingsRegistry(st)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	projects, err := tracker.NewProjectRegistry(st, settings)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}
	engine, err := tracker.NewEngine(st, projects, tracker.EngineConfig{})
	if err != nil {
		return fmt.Errorf("failed to load time entries: %w", err)
	}

	auth := NewAuthService(st, cfg.JWTSecret, cfg.TokenTTL)
	handlers := NewHandlers(projects, engine, auth)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: NewRouter(auth, handlers),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "db", cfg.DBPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return nil
}

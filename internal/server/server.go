package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cribscore/internal/config"
	"cribscore/internal/events"
	"cribscore/internal/scoring"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func NewLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}
	defer backend.Close()

	store, err := scoring.NewStore(ctx, scoring.NewKVPersistence(backend.Store, logger), logger)
	if err != nil {
		return err
	}
	bus := events.NewBus[scoring.Change](64)
	srv := New(scoring.NewSession(store, bus), bus, logger)
	if backend.Check != nil {
		srv.Checks[cfg.Store] = backend.Check
	}

	httpSrv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end when the process is told to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.Store}).Info("server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

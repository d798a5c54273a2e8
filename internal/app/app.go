// Package app assembles the API server from configuration. It is shared by
// the long-running server and the Lambda entry point.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"

	"fintrack/internal/amqp"
	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// App is a wired API server and the resources behind it.
type App struct {
	Server  *apphttp.Server
	Backend *backend.BackendResult

	records *cache.RecordCache
	events  *amqp.Client
	logger  *log.Logger
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// installs it as the slog default.
func NewLogger(cfg *config.Config) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.LogLevel)
	lc.Format = cfg.LogFormat
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// Build opens the configured backend and wires services and routes. AMQP is
// optional: when it cannot be reached the API runs without change events.
func Build(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	a := &App{Backend: res, logger: logger}

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	if cfg.CacheTTL > 0 {
		a.records, err = cache.NewRecordCache(cfg.CacheMaxCost, cfg.CacheTTL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("record cache: %w", err)
		}
	}

	var events services.Publisher
	if cfg.AMQPURL != "" {
		a.events, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			events = a.events
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	a.Server = apphttp.NewServer(net.JoinHostPort("", cfg.Port), apphttp.Deps{
		Users:              services.NewUserService(res.Store, tokens, cfg.RequirePassword, logger),
		Transactions:       services.NewTransactionService(res.Store, a.records, events, logger),
		Tokens:             tokens,
		Ready:              res.Store,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSAllowedOrigins,
	})
	return a, nil
}

// Close releases the event client, the cache and the backend.
func (a *App) Close() error {
	var errs []error
	if a.events != nil {
		errs = append(errs, a.events.Close())
	}
	if a.records != nil {
		a.records.Close()
	}
	if a.Backend != nil && a.Backend.Cleanup != nil {
		errs = append(errs, a.Backend.Cleanup())
	}
	return errors.Join(errs...)
}

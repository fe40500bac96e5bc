package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"finitefield.org/storefront-web/internal/catalog"
	"finitefield.org/storefront-web/internal/config"
	"finitefield.org/storefront-web/internal/format"
	"finitefield.org/storefront-web/internal/httpserver"
	"finitefield.org/storefront-web/internal/observability"
	"finitefield.org/storefront-web/internal/session"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", verr.Fields())
		} else {
			fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		}
		os.Exit(1)
	}

	baseLogger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.Bool("dev", cfg.DevMode),
		zap.String("env_file", cfg.Snapshot.EnvFile),
		zap.Strings("keys", cfg.Snapshot.Keys),
	)

	products := catalog.Default()
	if cfg.Catalog.File != "" {
		products, err = catalog.Load(cfg.Catalog.File)
		if err != nil {
			logger.Fatal("failed to load catalog", zap.String("file", cfg.Catalog.File), zap.Error(err))
		}
	}
	logger.Info("catalog ready", zap.Int("products", len(products.Products())))

	if cfg.Session.SigningKey == "" {
		logger.Warn("session signing key not set; using a process-local key")
	}

	store := session.NewStore(session.Options{
		Catalog:      products,
		Formatter:    format.New(cfg.UI.Locale),
		TTL:          cfg.Session.TTL,
		AutoClose:    cfg.UI.CartAutoClose,
		NotifyTTL:    cfg.UI.NotifyTTL,
		ContactDelay: cfg.UI.ContactDelay,
		Logger:       logger.Named("session"),
	})

	server, err := httpserver.New(httpserver.Config{
		Address:        cfg.Address(),
		Store:          store,
		Logger:         logger.Named("http"),
		DevMode:        cfg.DevMode,
		SessionHashKey: []byte(cfg.Session.SigningKey),
		CookieSecure:   !cfg.IsLocal(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
	})
	if err != nil {
		logger.Fatal("failed to build http server", zap.Error(err))
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	var sweepWG sync.WaitGroup
	sweepWG.Add(1)
	go func() {
		defer sweepWG.Done()
		store.Run(sweepCtx)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	sweepCancel()
	sweepWG.Wait()
	store.Close()
	logger.Info("sessions released")
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.DevMode {
		return observability.NewDevelopmentLogger()
	}
	return observability.NewLogger(cfg.Logging.Level)
}

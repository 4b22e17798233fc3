package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/auth"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cache"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpserver "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/sequence"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

type checkoutPublisher interface {
	httpserver.CheckoutPublisher
	Close() error
}

func serve(ctx context.Context) error {
	publisher, closePublisher, err := newPublisher(ctx)
	if err != nil {
		return err
	}
	defer closePublisher()

	sessionOpts := session.Options{
		IdleTTL:       cfg.Session.IdleTTL,
		SweepInterval: cfg.Session.SweepInterval,
		Logger:        logger,
	}
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		sessionOpts.Cache = cache.NewRedisSnapshotCache(rdb)
		logger.Info("session snapshots cached in redis", zap.String("addr", cfg.Redis.Addr))
	}
	sessions := session.NewRegistry(sessionOpts)
	defer sessions.Close()

	upstream := &http.Client{Timeout: cfg.Upstream.Timeout}
	newClient := func(name string) (*clients.Client, error) {
		return clients.NewClient(name, cfg.Upstream.BaseURL, upstream)
	}
	authBase, err := newClient("auth")
	if err != nil {
		return err
	}
	catalogBase, err := newClient("catalog")
	if err != nil {
		return err
	}
	promoBase, err := newClient("promo")
	if err != nil {
		return err
	}

	verifier := auth.NewTokenVerifier(cfg.Security.JWTSecret, cfg.Security.Issuer)
	if !verifier.Enabled() {
		logger.Warn("jwt secret not configured; password change is not guarded locally")
	}

	h := httpserver.NewHandler(httpserver.Deps{
		Sessions:        sessions,
		Publisher:       publisher,
		Promo:           clients.NewPromoClient(promoBase),
		Catalog:         clients.NewCatalogClient(catalogBase),
		Auth:            clients.NewAuthClient(authBase),
		Logger:          logger,
		UpstreamTimeout: cfg.Upstream.Timeout,
	})

	srv := &http.Server{
		Addr: cfg.App.HTTPAddr,
		Handler: httpserver.NewRouter(h, httpserver.RouterOptions{
			Logger:      logger,
			CORSOrigins: cfg.HTTP.CORSOrigins,
			Verifier:    verifier,
		}),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("storefront listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newPublisher wires the RabbitMQ publisher with its Postgres sequence store,
// or a log-only publisher when messaging is disabled.
func newPublisher(ctx context.Context) (checkoutPublisher, func(), error) {
	if !cfg.Rabbit.Enabled {
		logger.Info("rabbitmq disabled; checkout events are logged only")
		p := events.NewLogPublisher(logger)
		return p, func() {}, nil
	}

	if cfg.Postgres.RunMigrations {
		if err := db.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool, err := db.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, nil, err
	}

	conn, err := events.Dial(cfg.Rabbit.URL)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	p, err := events.NewPublisher(conn, sequence.NewRepository(pool), events.PublisherOptions{
		Producer: cfg.App.Name,
		Logger:   logger,
	})
	if err != nil {
		_ = conn.Close()
		pool.Close()
		return nil, nil, fmt.Errorf("create publisher: %w", err)
	}

	return p, func() {
		if err := p.Close(); err != nil {
			logger.Warn("close publisher", zap.Error(err))
		}
		if err := conn.Close(); err != nil {
			logger.Warn("close rabbitmq connection", zap.Error(err))
		}
		pool.Close()
	}, nil
}

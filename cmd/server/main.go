package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"event_backend/internal/app/di"
	"event_backend/internal/app/router"
	authhandler "event_backend/internal/feature/auth/transport/handler"
	eventhandler "event_backend/internal/feature/events/transport/handler"
	reghandler "event_backend/internal/feature/registration/transport/handler"
	"event_backend/internal/platform/config"
	platformdb "event_backend/internal/platform/db"
	"event_backend/internal/platform/http/handler"
	"event_backend/internal/platform/metrics"
	platformredis "event_backend/internal/platform/redis"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	slog.SetDefault(di.NewLogger(os.Stdout, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := di.OpenDB(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := platformdb.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()
	if cfg.DB.RunMigrations || cfg.DB.Driver == platformdb.DriverSQLite {
		if err := di.Migrate(db); err != nil {
			return err
		}
	}

	// Redis（任意）
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := platformredis.NewRedisClient(ctx, platformredis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password}); err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	m := metrics.New()
	app, err := di.NewApp(cfg, db, rdb, m)
	if err != nil {
		return err
	}

	checks := map[string]handler.CheckFunc{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	r := router.NewRouter(router.Handlers{
		Health:       handler.NewHealthHandler(checks),
		Auth:         authhandler.NewAuthHandler(app.Auth),
		Events:       eventhandler.NewEventHandler(app.Events),
		Registration: reghandler.NewRegistrationHandler(app.Registration),
	}, app.Tokens, m, cfg.HTTP.CORSOrigins...)

	srv := &http.Server{Addr: cfg.HTTP.Addr(), Handler: r}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Dispatcher.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

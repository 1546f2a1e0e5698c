package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"event_backend/internal/app/di"
	"event_backend/internal/platform/config"
	platformdb "event_backend/internal/platform/db"
	"event_backend/internal/platform/metrics"
	platformredis "event_backend/internal/platform/redis"
)

// env is the database connection and application graph a command runs against.
type env struct {
	db    *gorm.DB
	app   *di.App
	close func()
}

// opener builds an env. Tests replace it with an in-memory database.
type opener func(ctx context.Context) (*env, error)

// openEnv loads the configuration from the environment (and .env) and connects
// to the database. Redis is connected when configured so that counter repairs
// drop cached listings; without it they expire with their TTL.
func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load(".env")
	if err != nil {
		return nil, err
	}
	slog.SetDefault(di.NewLogger(os.Stderr, cfg.LogLevel))

	db, err := di.OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		if rdb, err = platformredis.NewRedisClient(ctx, platformredis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password}); err != nil {
			slog.Warn("Redis unavailable. Cached listings will not be invalidated.")
			rdb = nil
		}
	}
	closeAll := func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		if err := platformdb.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}

	app, err := di.NewApp(cfg, db, rdb, metrics.New())
	if err != nil {
		closeAll()
		return nil, err
	}
	return &env{db: db, app: app, close: closeAll}, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:          "eventadmin",
		Short:        "Administer the event registration database",
		SilenceUsage: true,
	}

	// withEnv opens the env for the duration of one command.
	withEnv := func(run func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return fmt.Errorf("open environment: %w", err)
			}
			defer e.close()
			return run(cmd, e, args)
		}
	}

	root.AddCommand(
		newMigrateCmd(withEnv),
		newPromoteCmd(withEnv),
		newSetActiveCmd(withEnv, "activate", true),
		newSetActiveCmd(withEnv, "deactivate", false),
		newRemindCmd(withEnv),
		newReconcileCmd(withEnv),
	)
	return root
}

type envRunner func(run func(cmd *cobra.Command, e *env, args []string) error) func(*cobra.Command, []string) error

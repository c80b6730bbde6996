package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nekogravitycat/hotdesk-backend/internal/app"
	"github.com/nekogravitycat/hotdesk-backend/internal/config"
	"github.com/nekogravitycat/hotdesk-backend/internal/db"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "hotdesk",
		Short:         "Hot-desk booking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSweepCmd(),
		newCreateAdminCmd(),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every subcommand needs before doing its own work.
type env struct {
	cfg  *config.Config
	log  *slog.Logger
	pool *pgxpool.Pool
}

func (e *env) Close() {
	e.pool.Close()
}

// setup loads config, installs the process logger and connects to the database.
func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	format := logger.Text
	if cfg.IsProduction {
		format = logger.JSON
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: format})
	slog.SetDefault(log)

	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}

	return &env{cfg: cfg, log: log, pool: pool}, nil
}

func (e *env) container() *app.Container {
	return app.NewContainer(app.Config{
		IsProduction:   e.cfg.IsProduction,
		ProdOrigins:    e.cfg.ProdOrigins,
		DBPool:         e.pool,
		JWTSecret:      e.cfg.JWTSecret,
		JWTTTL:         e.cfg.JWTAccessTokenTTL,
		BcryptCost:     e.cfg.BcryptCost,
		TimeZone:       e.cfg.TimeZone,
		SweepInterval:  e.cfg.SweepInterval,
		MetricsEnabled: e.cfg.MetricsEnabled,
		Logger:         e.log,
	})
}

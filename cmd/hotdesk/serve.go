package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/nekogravitycat/hotdesk-backend/internal/db"
)

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the expiration sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			if !skipMigrate {
				if err := db.Migrate(ctx, e.pool); err != nil {
					return err
				}
			}

			if e.cfg.IsProduction {
				gin.SetMode(gin.ReleaseMode)
			}

			c := e.container()

			sweepDone := make(chan struct{})
			go func() {
				defer close(sweepDone)
				c.Sweeper.Run(ctx)
			}()

			// Use http.Server for graceful shutdown
			server := &http.Server{
				Addr:              e.cfg.HTTPAddr,
				Handler:           c.Router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			serveErr := make(chan error, 1)
			go func() {
				e.log.Info("server running", "addr", e.cfg.HTTPAddr, "timezone", e.cfg.TimeZone.String())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			// Wait for Ctrl+C or a listener failure
			select {
			case <-ctx.Done():
				e.log.Info("shutdown signal received")
			case err := <-serveErr:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				e.log.Warn("server forced to shutdown", "error", err)
			}
			<-sweepDone

			e.log.Info("server exited gracefully")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply the schema on startup")
	return cmd
}

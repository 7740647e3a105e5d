/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the reconciliation ledger server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and logging configuration
  2. Initialize SQLite store
  3. Build ledger engine and tax service
  4. Configure HTTP router
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags:      --port, --db
  Environment: PORT, DATABASE_PATH, LOG_LEVEL, LOG_FORMAT
  Flags win over environment; environment wins over defaults.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.

SEE ALSO:
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dasunhq/idurar-erp-crm/api"
	"github.com/dasunhq/idurar-erp-crm/ledger"
	"github.com/dasunhq/idurar-erp-crm/logger"
	"github.com/dasunhq/idurar-erp-crm/store/sqlite"
	"github.com/dasunhq/idurar-erp-crm/taxes"
)

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	if err := logger.Setup(logger.FromEnv()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		log := logger.WithComponent("main")
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		port   int
		dbPath string
	)

	cmd := &cobra.Command{
		Use:   "erp-server",
		Short: "Invoice/payment reconciliation ledger server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
					port = v
				}
			}
			if !cmd.Flags().Changed("db") {
				if v := os.Getenv("DATABASE_PATH"); v != "" {
					dbPath = v
				}
			}
			return run(port, dbPath)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8888, "HTTP server port")
	cmd.Flags().StringVar(&dbPath, "db", "erp.db", "SQLite database path (\":memory:\" for in-memory)")
	return cmd
}

func run(port int, dbPath string) error {
	log := logger.WithComponent("server")

	st, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer st.Close()

	engine := ledger.NewEngine(st, st, logger.WithComponent("ledger"))
	taxSvc := taxes.NewService(st)

	handler := api.NewHandler(engine, taxSvc, logger.WithComponent("api"))
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", port).Str("db", dbPath).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

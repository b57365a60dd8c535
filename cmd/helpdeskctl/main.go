package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/config"
	"github.com/TahjibNil75/trackIT/internal/observability"
	"github.com/TahjibNil75/trackIT/internal/persistence"
)

var (
	cfg    *config.Config
	logger *zap.Logger
	dsn    string
)

var rootCmd = &cobra.Command{
	Use:   "helpdeskctl",
	Short: "Administrative tasks for the helpdesk service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if dsn != "" {
			loaded.Postgres.DSN = dsn
		}
		cfg = loaded

		logger, err = observability.NewLogger(cfg.Logger)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL DSN (defaults to POSTGRES_DSN)")
	rootCmd.AddCommand(
		NewMigrateCommand(),
		NewCreateAdminCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("helpdeskctl: %v", err)
	}
}

func connect(ctx context.Context) (*persistence.Postgres, error) {
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("a database DSN is required (--dsn or POSTGRES_DSN)")
	}
	return persistence.NewPostgres(ctx, cfg.Postgres, logger)
}

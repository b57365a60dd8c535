package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/persistence"
)

// NewMigrateCommand applies the embedded schema migrations.
func NewMigrateCommand() *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrates or initializes the PostgreSQL database to the latest schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names, err := persistence.MigrationNames()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			pg, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pg.Close()

			if err := persistence.RunMigrations(cmd.Context(), pg.PoolHandle(), logger); err != nil {
				return fmt.Errorf("could not migrate db: %w", err)
			}
			logger.Info("database schema up to date", zap.String("env", cfg.App.Env))
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "Print embedded migrations without applying them")
	return cmd
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/repository"
	"github.com/TahjibNil75/trackIT/internal/service"
)

// NewCreateAdminCommand bootstraps an administrator account, which public signup cannot create.
func NewCreateAdminCommand() *cobra.Command {
	var username, email, fullName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Creates an admin account. The password is read from HELPDESK_ADMIN_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("HELPDESK_ADMIN_PASSWORD")
			if password == "" {
				return fmt.Errorf("HELPDESK_ADMIN_PASSWORD must be set")
			}

			pg, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pg.Close()

			authService := service.NewAuthService(cfg.Auth, repository.NewUserRepository(pg.PoolHandle()))
			input := service.SignupInput{
				Username:        username,
				Email:           email,
				Password:        password,
				ConfirmPassword: password,
			}
			if fullName != "" {
				input.FullName = &fullName
			}
			user, err := authService.CreateAccount(cmd.Context(), input, domain.RoleAdmin)
			if err != nil {
				return err
			}

			logger.Info("admin account created", zap.String("user_id", user.ID), zap.String("email", user.Email))
			fmt.Fprintln(cmd.OutOrStdout(), user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "admin", "Username for the new account")
	cmd.Flags().StringVar(&email, "email", "", "Email address for the new account")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Optional display name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

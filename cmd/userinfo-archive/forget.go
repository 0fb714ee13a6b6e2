package main

import (
	"context"
	"errors"

	"github.com/brizzai/federated-userinfo/internal/vault"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newForgetCmd() *cobra.Command {
	var userKey string

	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Remove the archive stored under a user key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userKey == "" {
				return errors.New("user key is required, you must supply it with --key")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			err = withVault(cmd.Context(), cfg, func(ctx context.Context, svc *vault.Service) error {
				return svc.Forget(ctx, userKey)
			})
			if err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Forgot user info under key %s", userKey)
			return nil
		},
	}

	cmd.Flags().StringVar(&userKey, "key", "", "User key to remove")
	return cmd
}

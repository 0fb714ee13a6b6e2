package main

import (
	"context"
	"errors"

	"github.com/brizzai/federated-userinfo/internal/archive"
	"github.com/brizzai/federated-userinfo/internal/store"
	"github.com/brizzai/federated-userinfo/internal/userinfo"
	"github.com/brizzai/federated-userinfo/internal/vault"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newOpenCmd() *cobra.Command {
	var inFile, userKey, format string

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a sealed archive and print the user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (inFile == "") == (userKey == "") {
				return errors.New("exactly one of --in or --key is required")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			var info *userinfo.AdditionalUserInfo
			if inFile != "" {
				data, err := readInput(inFile)
				if err != nil {
					return err
				}
				archiver, err := archive.NewFromConfig(cfg)
				if err != nil {
					return err
				}
				if info, err = userinfo.Unarchive(archiver, data); err != nil {
					return err
				}
			} else {
				err := withVault(cmd.Context(), cfg, func(ctx context.Context, svc *vault.Service) error {
					var err error
					info, err = svc.Load(ctx, userKey)
					return err
				})
				if errors.Is(err, store.ErrNotFound) {
					pterm.Warning.WithWriter(cmd.OutOrStdout()).Printfln("No additional user info available for %s", userKey)
					return nil
				}
				if err != nil {
					return err
				}
			}

			return render(cmd.OutOrStdout(), info, format)
		},
	}

	cmd.Flags().StringVar(&inFile, "in", "", "Path to a sealed archive (- for stdin)")
	cmd.Flags().StringVar(&userKey, "key", "", "Load the archive stored under this user key")
	cmd.Flags().StringVar(&format, "format", formatYAML, "Output format (yaml|json)")
	return cmd
}

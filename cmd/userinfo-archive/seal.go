package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/brizzai/federated-userinfo/internal/archive"
	"github.com/brizzai/federated-userinfo/internal/identitytoolkit"
	"github.com/brizzai/federated-userinfo/internal/logger"
	"github.com/brizzai/federated-userinfo/internal/userinfo"
	"github.com/brizzai/federated-userinfo/internal/vault"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSealCmd() *cobra.Command {
	var responseFile, outFile, userKey string

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Seal the user info of a verifyAssertion response",
		Long: `Reads a verifyAssertion response body, extracts the additional user info and
seals it. The archive is written to --out, saved in the store under --key, or
printed to stdout when neither is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if responseFile == "" {
				return errors.New("response file is required, you must supply it with --response")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			body, err := readInput(responseFile)
			if err != nil {
				return err
			}
			resp, err := identitytoolkit.ParseVerifyAssertionResponse(body)
			if err != nil {
				return err
			}
			info := userinfo.FromProviderResponse(resp)
			logger.Debug("Parsed verifyAssertion response",
				zap.Object("user_info", info),
				zap.Bool("has_oauth_token", resp.OAuthToken() != nil),
			)

			if userKey != "" {
				err := withVault(cmd.Context(), cfg, func(ctx context.Context, svc *vault.Service) error {
					return svc.Save(ctx, userKey, info)
				})
				if err != nil {
					return err
				}
				pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Saved user info for %s under key %s", pterm.LightGreen(info.ProviderID()), pterm.White(userKey))
				if outFile == "" {
					return nil
				}
			}

			archiver, err := archive.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			data, err := userinfo.Archive(archiver, info)
			if err != nil {
				return fmt.Errorf("failed to seal user info: %w", err)
			}

			if outFile == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(outFile, data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", outFile, err)
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Wrote %d byte archive to %s", len(data), outFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&responseFile, "response", "", "Path to a verifyAssertion response body (- for stdin)")
	cmd.Flags().StringVar(&outFile, "out", "", "Write the archive to this file")
	cmd.Flags().StringVar(&userKey, "key", "", "Save the archive in the store under this user key")
	return cmd
}

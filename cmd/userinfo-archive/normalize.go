package main

import (
	"errors"

	"github.com/brizzai/federated-userinfo/internal/providers"
	"github.com/brizzai/federated-userinfo/internal/userinfo"
	"github.com/spf13/cobra"
)

func newNormalizeCmd() *cobra.Command {
	var providerID, userinfoFile, format string
	var isNewUser bool

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Show the user info a provider's raw userinfo payload turns into",
		RunE: func(cmd *cobra.Command, args []string) error {
			if providerID == "" || userinfoFile == "" {
				return errors.New("--provider and --userinfo are required")
			}

			raw, err := readInput(userinfoFile)
			if err != nil {
				return err
			}
			assertion, err := providers.NewDefaultRegistry().Normalize(providerID, raw, isNewUser)
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), userinfo.FromProviderResponse(assertion), format)
		},
	}

	cmd.Flags().StringVar(&providerID, "provider", "", "Provider ID, e.g. google.com or github.com")
	cmd.Flags().StringVar(&userinfoFile, "userinfo", "", "Path to the provider's userinfo JSON (- for stdin)")
	cmd.Flags().BoolVar(&isNewUser, "new-user", false, "Mark the sign-in as creating a new user")
	cmd.Flags().StringVar(&format, "format", formatYAML, "Output format (yaml|json)")
	return cmd
}

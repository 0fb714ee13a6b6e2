package main

import (
	"context"
	"os"

	"github.com/brizzai/federated-userinfo/internal/config"
	"github.com/brizzai/federated-userinfo/internal/logger"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	Execute()
}

// newRootCmd builds the base command with every subcommand attached
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "userinfo-archive",
		Short: "Seal and inspect additional user info from federated sign-ins",
		Long: `userinfo-archive keeps the additional user info returned by a federated sign-in
(provider ID, provider profile, username and the new-user flag) as signed archives.
Archives can be written to files or kept in the configured store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Place version check in PreRun to ensure flags are parsed first
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			versionFlag, _ := cmd.Flags().GetBool("version")
			if versionFlag {
				pterm.Info.Println(config.GetVersionInfo())
				os.Exit(0)
			}
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(newSealCmd(), newOpenCmd(), newNormalizeCmd(), newForgetCmd())
	return rootCmd
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	err := newRootCmd().ExecuteContext(context.Background())
	_ = logger.Sync()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and sets up the global logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Root().PersistentFlags())
	if err != nil {
		return nil, err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

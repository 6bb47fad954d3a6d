package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lore-keeper/backend/internal/constants"
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := defaultOptions()
	root := &cobra.Command{
		Use:           constants.AppName,
		Short:         "Campaign knowledge keeper: relationship graphs, consistency checks and deep dives",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.Version = constants.Version
	root.SetVersionTemplate("{{.Version}}\n")

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", opts.apiURL, "lore-keeper API base URL (API_URL)")
	root.PersistentFlags().StringVar(&opts.token, "token", opts.token, "Bearer token (API_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", opts.timeout, "HTTP timeout")

	root.AddCommand(campaignsCmd(opts))
	root.AddCommand(graphCmd(opts))
	root.AddCommand(warningsCmd(opts))
	root.AddCommand(checkCmd(opts))
	root.AddCommand(deepDiveCmd(opts))
	root.AddCommand(tokenCmd(opts))
	root.AddCommand(versionCmd())
	return root
}

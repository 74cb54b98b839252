package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matiin1402/InternalLinkBot/internal/config"
	"github.com/matiin1402/InternalLinkBot/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "linkbot",
	Short:         "Telegram bot that suggests internal links from a site's sitemap",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// ---- Configuration (read only here) ----
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := observability.Configure(cfg.LogLevel, nil); err != nil {
			return fmt.Errorf("config: LOG_LEVEL: %w", err)
		}
		cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (default ./config.yaml)")
	rootCmd.AddCommand(pollCmd, webhookCmd, lambdaCmd, projectsCmd)
}

func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		observability.Base().WithError(err).Error("linkbot exited")
		os.Exit(1)
	}
}

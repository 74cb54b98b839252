package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matiin1402/InternalLinkBot/handler"
	"github.com/matiin1402/InternalLinkBot/internal/observability"
)

var webhookCmd = &cobra.Command{
	Use:   "webhook",
	Short: "Serve Telegram webhook deliveries over HTTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := configFrom(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := handler.NewWebhookServer(a.dispatcher, handler.WebhookConfig{
			Path:    cfg.WebhookPath,
			Secret:  cfg.WebhookSecret,
			Metrics: a.metrics.Handler(),
		})
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			observability.Base().WithField("addr", cfg.WebhookAddr).Info("serving webhook")
			errCh <- e.Start(cfg.WebhookAddr)
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			shutdownEcho(e)
			return nil
		}
	},
}

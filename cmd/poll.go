package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/matiin1402/InternalLinkBot/internal/integrations/telegram"
	"github.com/matiin1402/InternalLinkBot/internal/observability"
)

const shutdownTimeout = 30 * time.Second

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Receive updates with long polling",
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

		// getUpdates is refused while a webhook is registered
		if _, err := a.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			return err
		}

		if cfg.MetricsAddr != "" {
			srv := newMetricsServer(a)
			go func() {
				if err := srv.Start(cfg.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					observability.Base().WithError(err).Error("metrics server stopped")
				}
			}()
			defer shutdownEcho(srv)
		}

		observability.Base().Info("polling for updates")
		err = telegram.NewPoller(a.bot).Run(ctx, a.dispatcher.HandleUpdate)
		observability.Base().Info("poller stopped")
		return err
	},
}

func newMetricsServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}

func shutdownEcho(e *echo.Echo) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		observability.Base().WithError(err).Warn("server shutdown failed")
	}
}

package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/matiin1402/InternalLinkBot/internal/integrations/telegram"
	"github.com/matiin1402/InternalLinkBot/internal/observability"
)

// maxUpdateBytes bounds a single webhook body.
const maxUpdateBytes = 1 << 20

type WebhookConfig struct {
	Path    string
	Secret  string
	Metrics http.Handler
}

type webhook struct {
	updates UpdateHandler
	secret  string
}

// NewWebhookServer builds the echo server for webhook mode: the update
// endpoint plus /healthz and, when given, /metrics.
func NewWebhookServer(updates UpdateHandler, cfg WebhookConfig) (*echo.Echo, error) {
	if updates == nil {
		return nil, errors.New("handler: update handler must not be nil")
	}
	if cfg.Path == "" {
		cfg.Path = "/telegram/webhook"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	w := &webhook{updates: updates, secret: cfg.Secret}
	e.POST(cfg.Path, w.receive)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(cfg.Metrics))
	}
	return e, nil
}

func (w *webhook) receive(c echo.Context) error {
	req := c.Request()
	correlationID := req.Header.Get(headerCorrelationID)
	if correlationID == "" {
		correlationID = observability.NewCorrelationID()
	}
	c.Response().Header().Set(headerCorrelationID, correlationID)
	// the pipeline outlives a Telegram-side disconnect
	ctx := observability.WithCorrelationID(context.WithoutCancel(req.Context()), correlationID)
	log := observability.Logger(ctx)

	if !secretMatches(w.secret, req.Header.Get(headerSecretToken)) {
		log.Warn("rejected webhook delivery with bad secret token")
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxUpdateBytes))
	if err != nil {
		log.WithError(err).Warn("read webhook body failed")
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}
	u, err := telegram.DecodeUpdate(body)
	if err != nil {
		log.WithError(err).Warn("dropping undecodable update")
		return c.JSON(http.StatusOK, okResponse{OK: true})
	}

	w.updates.HandleUpdate(ctx, u)
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

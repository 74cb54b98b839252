package handler

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/matiin1402/InternalLinkBot/internal/integrations/telegram"
	"github.com/matiin1402/InternalLinkBot/internal/observability"
)

const (
	headerSecretToken   = "X-Telegram-Bot-Api-Secret-Token"
	headerCorrelationID = "X-Correlation-Id"
)

// UpdateHandler consumes decoded Bot API updates. *Dispatcher satisfies it.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, u tgbotapi.Update)
}

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves Telegram webhook deliveries arriving through API Gateway.
type Handler struct {
	updates UpdateHandler
	secret  string
}

func NewHandler(updates UpdateHandler, secret string) (*Handler, error) {
	if updates == nil {
		return nil, errors.New("handler: update handler must not be nil")
	}
	return &Handler{updates: updates, secret: secret}, nil
}

// Handle answers 200 for every authenticated delivery, including bodies that
// do not decode, so Telegram does not retry them.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, headerCorrelationID)
	if correlationID == "" {
		correlationID = observability.NewCorrelationID()
	}
	ctx = observability.WithCorrelationID(ctx, correlationID)
	log := observability.Logger(ctx)

	if !secretMatches(h.secret, headerValue(req.Headers, headerSecretToken)) {
		log.Warn("rejected webhook delivery with bad secret token")
		return jsonResponse(http.StatusUnauthorized, correlationID, errorResponse{Error: "unauthorized"}), nil
	}

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			log.WithError(err).Warn("dropping update with invalid base64 body")
			return jsonResponse(http.StatusOK, correlationID, okResponse{OK: true}), nil
		}
		body = decoded
	}

	u, err := telegram.DecodeUpdate(body)
	if err != nil {
		log.WithError(err).Warn("dropping undecodable update")
		return jsonResponse(http.StatusOK, correlationID, okResponse{OK: true}), nil
	}

	h.updates.HandleUpdate(ctx, u)
	return jsonResponse(http.StatusOK, correlationID, okResponse{OK: true}), nil
}

func jsonResponse(status int, correlationID string, body any) events.APIGatewayProxyResponse {
	raw, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":      "application/json",
			headerCorrelationID: correlationID,
		},
		Body: string(raw),
	}
}

// headerValue looks a header up case-insensitively; API Gateway keeps the
// client's casing.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// secretMatches accepts everything when no secret is configured.
func secretMatches(want, got string) bool {
	if want == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

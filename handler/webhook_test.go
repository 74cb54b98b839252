package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/matiin1402/InternalLinkBot/internal/metrics"
)

func newTestWebhook(t *testing.T, updates UpdateHandler, secret string) *echo.Echo {
	t.Helper()
	e, err := NewWebhookServer(updates, WebhookConfig{Path: "/hook", Secret: secret, Metrics: metrics.New().Handler()})
	require.NoError(t, err)
	return e
}

func postUpdate(e *echo.Echo, body, secret string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if secret != "" {
		req.Header.Set("X-Telegram-Bot-Api-Secret-Token", secret)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestNewWebhookServer_ValidatesDependency(t *testing.T) {
	_, err := NewWebhookServer(nil, WebhookConfig{})
	require.Error(t, err)
}

func TestWebhook_DeliversUpdate(t *testing.T) {
	updates := &stubUpdates{}
	e := newTestWebhook(t, updates, "s3cret")

	rec := postUpdate(e, textUpdate, "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Correlation-Id"))
	require.Len(t, updates.received, 1)
	require.Equal(t, rec.Header().Get("X-Correlation-Id"), updates.corrIDs[0])
}

func TestWebhook_RejectsWrongSecret(t *testing.T) {
	updates := &stubUpdates{}
	e := newTestWebhook(t, updates, "s3cret")

	rec := postUpdate(e, textUpdate, "nope")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Empty(t, updates.received)
}

func TestWebhook_AcknowledgesGarbage(t *testing.T) {
	updates := &stubUpdates{}
	e := newTestWebhook(t, updates, "")

	rec := postUpdate(e, "{", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, updates.received)
}

func TestWebhook_HealthAndMetrics(t *testing.T) {
	e := newTestWebhook(t, &stubUpdates{}, "")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ok"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserve_Counts(t *testing.T) {
	m := New()
	m.ObserveUpdate("start")
	m.ObserveUpdate("start")
	m.ObserveUpdate("text")
	m.ObserveSuggestion("ok", 2*time.Second)

	require.Equal(t, 2.0, testutil.ToFloat64(m.updates.WithLabelValues("start")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.updates.WithLabelValues("text")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.suggestions.WithLabelValues("ok")))
}

func TestNilMetrics_IsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveUpdate("start")
	m.ObserveSuggestion("ok", time.Second)
}

func TestHandler_ServesMetrics(t *testing.T) {
	m := New()
	m.ObserveUpdate("select")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `linkbot_updates_total{kind="select"} 1`)
}

func TestRegistry_GathersAllCollectors(t *testing.T) {
	m := New()
	m.ObserveUpdate("text")
	m.ObserveSuggestion("SITEMAP_EMPTY", 300*time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.ElementsMatch(t, []string{
		"linkbot_updates_total",
		"linkbot_suggestions_total",
		"linkbot_suggestion_duration_seconds",
	}, names)
	require.Equal(t, 1, testutil.CollectAndCount(m.suggestions))
}

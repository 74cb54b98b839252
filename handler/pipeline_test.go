package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/sitemap"
	"github.com/matiin1402/InternalLinkBot/internal/registry"
	"github.com/matiin1402/InternalLinkBot/internal/repository"
	"github.com/matiin1402/InternalLinkBot/internal/session"
	"github.com/matiin1402/InternalLinkBot/internal/usecase"
)

type countingLLM struct {
	mu      sync.Mutex
	answer  string
	prompts []string
}

func (c *countingLLM) SuggestLinks(_ context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.answer, nil
}

func (c *countingLLM) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.prompts)
}

type pipeline struct {
	d        *Dispatcher
	replier  *fakeReplier
	llm      *countingLLM
	sessions *session.Manager
}

// newPipeline wires the real session manager, suggest service and sitemap
// fetcher against a sitemap served by h.
func newPipeline(t *testing.T, h http.HandlerFunc) *pipeline {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	reg, err := registry.New(domain.Project{ID: "acme", Name: "Acme", SitemapURL: srv.URL + "/post-sitemap.xml"})
	require.NoError(t, err)
	sessions, err := session.NewManager(repository.NewMemoryStore(), reg, time.Minute)
	require.NoError(t, err)

	llm := &countingLLM{answer: "- **Anchor text:** First\n- **Link:** https://a.com/1\n"}
	svc, err := usecase.NewSuggestService(sitemap.NewFetcher(sitemap.WithTimeout(time.Second)), llm, time.Second, 300)
	require.NoError(t, err)

	p := &pipeline{replier: &fakeReplier{}, llm: llm, sessions: sessions}
	p.d, err = NewDispatcher(reg, sessions, svc, p.replier)
	require.NoError(t, err)
	return p
}

func (p *pipeline) submit(t *testing.T, title string) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, p.d.Dispatch(ctx, selectEvent(alice, "acme")))
	require.NoError(t, p.d.Dispatch(ctx, textEvent(alice, title)))

	state, err := p.sessions.State(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, domain.Idle(), state)

	texts := p.replier.texts()
	return texts[len(texts)-1]
}

func serveXML(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(body))
	}
}

func TestPipeline_SuggestionsFromSitemap(t *testing.T) {
	p := newPipeline(t, serveXML(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://a.com/1</loc></url>
  <url><loc>https://a.com/2</loc></url>
</urlset>`))

	reply := p.submit(t, "Widget Guide")

	require.Equal(t, "- **Anchor text:** First\n- **Link:** https://a.com/1", reply)
	require.Equal(t, 1, p.llm.calls())
	require.Contains(t, p.llm.prompts[0], `"Widget Guide"`)
	require.Contains(t, p.llm.prompts[0], "https://a.com/1, https://a.com/2")
}

func TestPipeline_SitemapNotFound(t *testing.T) {
	p := newPipeline(t, http.NotFound)

	reply := p.submit(t, "Widget Guide")

	require.Contains(t, reply, "404 Not Found")
	require.Zero(t, p.llm.calls())
}

func TestPipeline_EmptySitemapSkipsAI(t *testing.T) {
	p := newPipeline(t, serveXML(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"/>`))

	reply := p.submit(t, "Widget Guide")

	require.Equal(t, DefaultMessages().SitemapEmpty, reply)
	require.Zero(t, p.llm.calls())
}

func TestPipeline_ResentTitleAfterCompletionAsksForSelection(t *testing.T) {
	p := newPipeline(t, serveXML(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"><url><loc>https://a.com/1</loc></url></urlset>`))
	p.submit(t, "Widget Guide")

	require.NoError(t, p.d.Dispatch(context.Background(), textEvent(alice, "Widget Guide")))

	texts := p.replier.texts()
	require.Equal(t, DefaultMessages().SelectFirst, texts[len(texts)-1])
	require.Equal(t, 1, p.llm.calls())
}

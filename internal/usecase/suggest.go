package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/sitemap"
)

const (
	defaultAITimeout   = 60 * time.Second
	defaultMaxTitleLen = 300
)

type SitemapFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LinkSuggester is the generative-model capability: one prompt in, free text out.
type LinkSuggester interface {
	SuggestLinks(ctx context.Context, prompt string) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// SuggestService runs the fetch -> extract -> prompt -> AI pipeline for one
// article title. Every step is attempted exactly once.
type SuggestService struct {
	fetcher     SitemapFetcher
	llm         LinkSuggester
	aiTimeout   time.Duration
	maxTitleLen int
}

type SuggestInput struct {
	Project domain.Project
	Title   string
}

type SuggestOutput struct {
	Suggestions string
	URLCount    int
}

func NewSuggestService(f SitemapFetcher, llm LinkSuggester, aiTimeout time.Duration, maxTitleLen int) (*SuggestService, error) {
	if f == nil {
		return nil, errors.New("usecase: sitemap fetcher must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: link suggester must not be nil")
	}
	if aiTimeout <= 0 {
		aiTimeout = defaultAITimeout
	}
	if maxTitleLen <= 0 {
		maxTitleLen = defaultMaxTitleLen
	}
	return &SuggestService{
		fetcher:     f,
		llm:         llm,
		aiTimeout:   aiTimeout,
		maxTitleLen: maxTitleLen,
	}, nil
}

func (s *SuggestService) Suggest(ctx context.Context, in SuggestInput) (SuggestOutput, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return SuggestOutput{}, newError(ErrorInvalidTitle, "empty_title", nil)
	}
	if utf8.RuneCountInString(title) > s.maxTitleLen {
		return SuggestOutput{}, newError(ErrorInvalidTitle, "title_too_long", nil)
	}
	if strings.TrimSpace(in.Project.SitemapURL) == "" {
		return SuggestOutput{}, newError(ErrorProjectNotFound, "project_without_sitemap", nil)
	}

	body, err := s.fetcher.Fetch(ctx, in.Project.SitemapURL)
	if err != nil {
		return SuggestOutput{}, classifyFetchError(err)
	}

	urls, err := sitemap.ExtractURLs(body)
	if err != nil {
		var malformed *sitemap.MalformedError
		if errors.As(err, &malformed) {
			return SuggestOutput{}, newError(ErrorSitemapMalformed, "sitemap_malformed_xml", err)
		}
		return SuggestOutput{}, newError(ErrorUnexpected, "sitemap_extract_error", err)
	}
	if len(urls) == 0 {
		return SuggestOutput{}, newError(ErrorSitemapEmpty, "sitemap_no_urls", nil)
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	answer, err := s.llm.SuggestLinks(aiCtx, buildPrompt(title, urls))
	if err != nil {
		return SuggestOutput{}, classifyAIError(aiCtx, err)
	}

	return SuggestOutput{
		Suggestions: strings.TrimSpace(answer),
		URLCount:    len(urls),
	}, nil
}

func classifyFetchError(err error) *Error {
	var netErr *sitemap.NetworkError
	if !errors.As(err, &netErr) {
		return newError(ErrorUnexpected, "sitemap_fetch_error", err)
	}
	if _, ok := upstreamStatusCode(err); ok {
		return newError(ErrorSitemapUnreachable, "sitemap_http_status", err)
	}
	return newError(ErrorSitemapUnreachable, "sitemap_transport_error", err)
}

func classifyAIError(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return newError(ErrorAIService, "ai_timeout", err)
	}
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		return newError(ErrorAIService, "ai_rate_limited", err)
	}
	return newError(ErrorAIService, "ai_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

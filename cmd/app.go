package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/matiin1402/InternalLinkBot/handler"
	"github.com/matiin1402/InternalLinkBot/internal/config"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/gemini"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/openai"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/paramstore"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/sitemap"
	"github.com/matiin1402/InternalLinkBot/internal/integrations/telegram"
	"github.com/matiin1402/InternalLinkBot/internal/metrics"
	"github.com/matiin1402/InternalLinkBot/internal/observability"
	"github.com/matiin1402/InternalLinkBot/internal/registry"
	"github.com/matiin1402/InternalLinkBot/internal/repository"
	"github.com/matiin1402/InternalLinkBot/internal/session"
	"github.com/matiin1402/InternalLinkBot/internal/usecase"
)

// app is the fully wired bot shared by every run mode.
type app struct {
	cfg        *config.Config
	bot        *tgbotapi.BotAPI
	dispatcher *handler.Dispatcher
	metrics    *metrics.Metrics
	closers    []io.Closer
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			observability.Base().WithError(err).Warn("close failed")
		}
	}
}

// awsLoader defers AWS credential resolution until a component needs it.
type awsLoader struct {
	cfg    aws.Config
	loaded bool
}

func (l *awsLoader) get(ctx context.Context) (aws.Config, error) {
	if l.loaded {
		return l.cfg, nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	l.cfg, l.loaded = cfg, true
	return cfg, nil
}

func buildApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, metrics: metrics.New()}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	loader := &awsLoader{}

	// ---- Secrets ----
	var params paramstore.Getter
	if cfg.NeedsSSM() {
		awsCfg, err := loader.get(ctx)
		if err != nil {
			return nil, err
		}
		ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, err
		}
		params = ps
	}
	token, err := paramstore.ResolveSecret(ctx, params, cfg.TelegramToken, cfg.TelegramTokenParam)
	if err != nil {
		return nil, fmt.Errorf("resolve telegram token: %w", err)
	}

	// ---- Projects & sessions ----
	reg, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	backend, closer, err := buildSessionBackend(ctx, cfg, loader)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	sessions, err := session.NewManager(backend, reg, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	// ---- Pipeline ----
	llm, closer, err := buildLinkSuggester(ctx, cfg, params)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	fetcher := sitemap.NewFetcher(
		sitemap.WithTimeout(cfg.SitemapTimeout),
		sitemap.WithMaxBytes(cfg.SitemapMaxBytes),
	)
	svc, err := usecase.NewSuggestService(fetcher, llm, cfg.AITimeout, cfg.MaxTitleLength)
	if err != nil {
		return nil, err
	}

	// ---- Chat transport ----
	a.bot, err = telegram.NewBot(token, "", nil)
	if err != nil {
		return nil, err
	}
	replier, err := telegram.New(a.bot)
	if err != nil {
		return nil, err
	}

	a.dispatcher, err = handler.NewDispatcher(reg, sessions, svc, replier, handler.WithRecorder(a.metrics))
	if err != nil {
		return nil, err
	}

	observability.Base().WithFields(logrus.Fields{
		"bot":             a.bot.Self.UserName,
		"ai_provider":     cfg.AIProvider,
		"session_backend": cfg.SessionBackend,
		"projects":        len(reg.List()),
	}).Info("bot wired")
	return a, nil
}

func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	if len(cfg.Projects) == 0 {
		return registry.Default(), nil
	}
	return registry.New(cfg.Projects...)
}

func buildSessionBackend(ctx context.Context, cfg *config.Config, loader *awsLoader) (session.Backend, io.Closer, error) {
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return repository.NewMemoryStore(), nil, nil
	case config.BackendDynamoDB:
		awsCfg, err := loader.get(ctx)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), cfg.SessionTable)
		return store, nil, err
	case config.BackendRedis:
		client := repository.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		store, err := repository.NewRedisStore(client)
		return store, client, err
	default:
		return nil, nil, fmt.Errorf("unsupported session backend %q", cfg.SessionBackend)
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func buildLinkSuggester(ctx context.Context, cfg *config.Config, params paramstore.Getter) (usecase.LinkSuggester, io.Closer, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		key, err := paramstore.ResolveSecret(ctx, params, cfg.GoogleAPIKey, cfg.GoogleAPIKeyParam)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve gemini api key: %w", err)
		}
		client, err := gemini.NewClient(ctx, key, cfg.AIModel)
		if err != nil {
			return nil, nil, err
		}
		return client, closerFunc(client.Close), nil
	case config.ProviderOpenAI:
		key, err := paramstore.ResolveSecret(ctx, params, cfg.OpenAIAPIKey, cfg.OpenAIAPIKeyParam)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve openai api key: %w", err)
		}
		client, err := openai.NewClient(key, cfg.AIModel)
		return client, nil, err
	default:
		return nil, nil, errors.New("unsupported AI provider " + cfg.AIProvider)
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/matiin1402/InternalLinkBot/internal/domain"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

// Config is the full runtime configuration. Keys map 1:1 onto environment
// variables of the same name in upper case.
type Config struct {
	TelegramToken      string `mapstructure:"telegram_bot_token"`
	TelegramTokenParam string `mapstructure:"telegram_bot_token_param"`
	GoogleAPIKey       string `mapstructure:"google_api_key"`
	GoogleAPIKeyParam  string `mapstructure:"google_api_key_param"`
	OpenAIAPIKey       string `mapstructure:"openai_api_key"`
	OpenAIAPIKeyParam  string `mapstructure:"openai_api_key_param"`

	AIProvider string        `mapstructure:"ai_provider"`
	AIModel    string        `mapstructure:"ai_model"`
	AITimeout  time.Duration `mapstructure:"ai_timeout"`

	SitemapTimeout  time.Duration `mapstructure:"sitemap_timeout"`
	SitemapMaxBytes int64         `mapstructure:"sitemap_max_bytes"`
	MaxTitleLength  int           `mapstructure:"max_title_length"`

	SessionBackend string        `mapstructure:"session_backend"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	SessionTable   string        `mapstructure:"session_table"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`

	WebhookAddr   string `mapstructure:"webhook_addr"`
	WebhookPath   string `mapstructure:"webhook_path"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	MetricsAddr   string `mapstructure:"metrics_addr"`

	LogLevel string `mapstructure:"log_level"`

	// Projects replaces the built-in project table when non-empty.
	Projects []domain.Project `mapstructure:"projects"`
}

func setDefaults(v *viper.Viper) {
	// every key needs a default so AutomaticEnv picks it up on Unmarshal
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("telegram_bot_token_param", "")
	v.SetDefault("google_api_key", "")
	v.SetDefault("google_api_key_param", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_api_key_param", "")
	v.SetDefault("ai_provider", ProviderGemini)
	v.SetDefault("ai_model", "")
	v.SetDefault("ai_timeout", 60*time.Second)
	v.SetDefault("sitemap_timeout", 15*time.Second)
	v.SetDefault("sitemap_max_bytes", int64(10<<20))
	v.SetDefault("max_title_length", 300)
	v.SetDefault("session_backend", BackendMemory)
	v.SetDefault("session_ttl", 30*time.Minute)
	v.SetDefault("session_table", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("webhook_addr", ":8080")
	v.SetDefault("webhook_path", "/telegram/webhook")
	v.SetDefault("webhook_secret", "")
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("log_level", "info")
}

// Load reads the optional YAML file at path (or ./config.yaml when path is
// empty) and overlays environment variables. It does not validate.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.AIProvider = strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	cfg.SessionBackend = strings.ToLower(strings.TrimSpace(cfg.SessionBackend))
	return &cfg, nil
}

// Validate reports the first missing or inconsistent setting required to
// serve chat traffic.
func (c *Config) Validate() error {
	if blank(c.TelegramToken) && blank(c.TelegramTokenParam) {
		return errors.New("config: TELEGRAM_BOT_TOKEN or TELEGRAM_BOT_TOKEN_PARAM must be set")
	}

	switch c.AIProvider {
	case ProviderGemini:
		if blank(c.GoogleAPIKey) && blank(c.GoogleAPIKeyParam) {
			return errors.New("config: GOOGLE_API_KEY or GOOGLE_API_KEY_PARAM must be set")
		}
	case ProviderOpenAI:
		if blank(c.OpenAIAPIKey) && blank(c.OpenAIAPIKeyParam) {
			return errors.New("config: OPENAI_API_KEY or OPENAI_API_KEY_PARAM must be set")
		}
	default:
		return fmt.Errorf("config: AI_PROVIDER %q is not supported", c.AIProvider)
	}

	switch c.SessionBackend {
	case BackendMemory:
	case BackendDynamoDB:
		if blank(c.SessionTable) {
			return errors.New("config: SESSION_TABLE must be set for the dynamodb session backend")
		}
	case BackendRedis:
		if blank(c.RedisAddr) {
			return errors.New("config: REDIS_ADDR must be set for the redis session backend")
		}
	default:
		return fmt.Errorf("config: SESSION_BACKEND %q is not supported", c.SessionBackend)
	}

	if c.AITimeout <= 0 || c.SitemapTimeout <= 0 || c.SessionTTL <= 0 {
		return errors.New("config: AI_TIMEOUT, SITEMAP_TIMEOUT and SESSION_TTL must be positive")
	}
	return nil
}

// ValidateLambda is Validate plus the constraints of running as a Lambda
// function, where consecutive updates of one chat can land on different
// instances.
func (c *Config) ValidateLambda() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.SessionBackend == BackendMemory {
		return errors.New("config: SESSION_BACKEND=memory is not shared between Lambda instances; use dynamodb or redis")
	}
	return nil
}

// NeedsSSM reports whether any secret has to be read from Parameter Store.
func (c *Config) NeedsSSM() bool {
	if blank(c.TelegramToken) && !blank(c.TelegramTokenParam) {
		return true
	}
	switch c.AIProvider {
	case ProviderGemini:
		return blank(c.GoogleAPIKey) && !blank(c.GoogleAPIKeyParam)
	case ProviderOpenAI:
		return blank(c.OpenAIAPIKey) && !blank(c.OpenAIAPIKeyParam)
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Package config loads both binaries' settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"turn-translator/internal/domain"
	"turn-translator/internal/integrations/googletranslate"
	"turn-translator/internal/integrations/libretranslate"
	"turn-translator/internal/translation"
)

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

// Providers configures the translation cascade. Order is fixed: Google gtx,
// Google mobile, then each LibreTranslate server.
type Providers struct {
	GoogleEnabled         bool          `env:"GOOGLE_TRANSLATE_ENABLED" envDefault:"true"`
	GoogleBaseURL         string        `env:"GOOGLE_TRANSLATE_URL"`
	GoogleTimeout         time.Duration `env:"GOOGLE_TRANSLATE_TIMEOUT" envDefault:"10s"`
	GoogleMobileEnabled   bool          `env:"GOOGLE_MOBILE_ENABLED" envDefault:"false"`
	GoogleMobileURL       string        `env:"GOOGLE_MOBILE_URL"`
	GoogleMobileTimeout   time.Duration `env:"GOOGLE_MOBILE_TIMEOUT" envDefault:"10s"`
	LibreTranslateURLs    []string      `env:"LIBRETRANSLATE_URLS" envSeparator:","`
	LibreTranslateTimeout time.Duration `env:"LIBRETRANSLATE_TIMEOUT" envDefault:"5s"`
	LibreAPIKeyParam      string        `env:"LIBRETRANSLATE_API_KEY_PARAM"`
}

type Translator struct {
	SourceLanguage string `env:"SOURCE_LANGUAGE" envDefault:"pt"`
	TargetLanguage string `env:"TARGET_LANGUAGE" envDefault:"en"`

	StorageBackend  string `env:"STORAGE_BACKEND" envDefault:"file"`
	StorageDir      string `env:"STORAGE_DIR" envDefault:".turn-translator"`
	StateTable      string `env:"STATE_TABLE"`
	DatabaseURL     string `env:"DATABASE_URL"`
	HistoryKey      string `env:"HISTORY_KEY" envDefault:"translator_conversations"`
	HistoryCapacity int    `env:"HISTORY_CAPACITY" envDefault:"50"`

	Providers

	SummaryURL     string        `env:"SUMMARY_URL"`
	SummaryTimeout time.Duration `env:"SUMMARY_TIMEOUT" envDefault:"30s"`
	AutoPlay       bool          `env:"AUTO_PLAY" envDefault:"true"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

type Summarizer struct {
	ParamPrefix         string `env:"PARAM_PREFIX,required"`
	OpenAIModel         string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAIBaseURL       string `env:"OPENAI_BASE_URL"`
	MaxTranscriptLength int    `env:"MAX_TRANSCRIPT_LENGTH" envDefault:"20000"`

	Providers

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func LoadTranslator() (*Translator, error) {
	cfg := &Translator{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Providers.applyDefaults()
	return cfg, cfg.Validate()
}

func LoadSummarizer() (*Summarizer, error) {
	cfg := &Summarizer{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Providers.applyDefaults()
	return cfg, cfg.Validate()
}

func (p *Providers) applyDefaults() {
	urls := make([]string, 0, len(p.LibreTranslateURLs))
	for _, u := range p.LibreTranslateURLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	if len(urls) == 0 {
		urls = append(urls, libretranslate.DefaultServers...)
	}
	p.LibreTranslateURLs = urls
}

func (c *Translator) Validate() error {
	var errs []error
	if !domain.IsSupported(c.SourceLanguage) {
		errs = append(errs, fmt.Errorf("SOURCE_LANGUAGE %q is not supported", c.SourceLanguage))
	}
	if !domain.IsSupported(c.TargetLanguage) {
		errs = append(errs, fmt.Errorf("TARGET_LANGUAGE %q is not supported", c.TargetLanguage))
	}
	switch c.StorageBackend {
	case BackendMemory:
	case BackendFile:
		if strings.TrimSpace(c.StorageDir) == "" {
			errs = append(errs, errors.New("STORAGE_DIR is required for the file backend"))
		}
	case BackendDynamoDB:
		if strings.TrimSpace(c.StateTable) == "" {
			errs = append(errs, errors.New("STATE_TABLE is required for the dynamodb backend"))
		}
	case BackendPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND %q is not one of memory, file, dynamodb, postgres", c.StorageBackend))
	}
	if c.HistoryCapacity <= 0 {
		errs = append(errs, errors.New("HISTORY_CAPACITY must be positive"))
	}
	if err := c.Providers.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Summarizer) Validate() error {
	var errs []error
	if strings.TrimSpace(strings.Trim(c.ParamPrefix, "/")) == "" {
		errs = append(errs, errors.New("PARAM_PREFIX must not be empty"))
	}
	if c.MaxTranscriptLength <= 0 {
		errs = append(errs, errors.New("MAX_TRANSCRIPT_LENGTH must be positive"))
	}
	if err := c.Providers.validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (p Providers) validate() error {
	var errs []error
	for name, d := range map[string]time.Duration{
		"GOOGLE_TRANSLATE_TIMEOUT": p.GoogleTimeout,
		"GOOGLE_MOBILE_TIMEOUT":    p.GoogleMobileTimeout,
		"LIBRETRANSLATE_TIMEOUT":   p.LibreTranslateTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}

// Stages builds the provider cascade. libreAPIKey may be empty.
func (p Providers) Stages(httpClient *http.Client, libreAPIKey string) ([]translation.Stage, error) {
	var stages []translation.Stage
	if p.GoogleEnabled {
		stages = append(stages, translation.Stage{
			Provider: googletranslate.NewClient(
				googletranslate.WithBaseURL(p.GoogleBaseURL),
				googletranslate.WithHTTPClient(httpClient),
			),
			Timeout: p.GoogleTimeout,
		})
	}
	if p.GoogleMobileEnabled {
		stages = append(stages, translation.Stage{
			Provider: googletranslate.NewMobileClient(
				googletranslate.WithBaseURL(p.GoogleMobileURL),
				googletranslate.WithHTTPClient(httpClient),
			),
			Timeout: p.GoogleMobileTimeout,
		})
	}
	for _, server := range p.LibreTranslateURLs {
		client, err := libretranslate.NewClient(server,
			libretranslate.WithAPIKey(libreAPIKey),
			libretranslate.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("config: libretranslate server %q: %w", server, err)
		}
		stages = append(stages, translation.Stage{Provider: client, Timeout: p.LibreTranslateTimeout})
	}
	return stages, nil
}

// ParseLevel maps LOG_LEVEL to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"bulkdelete/internal/bulkdelete/model"

	"gopkg.in/yaml.v3"
)

const (
	EnvAPIKey               = "BULKDELETE_API_KEY"
	EnvAPIToken             = "BULKDELETE_API_TOKEN"
	EnvAPIURL               = "BULKDELETE_API_URL"
	EnvWorkers              = "BULKDELETE_WORKERS"
	EnvRequestTimeout       = "BULKDELETE_REQUEST_TIMEOUT"
	EnvMaxRetries           = "BULKDELETE_MAX_RETRIES"
	EnvRetryInitialInterval = "BULKDELETE_RETRY_INITIAL_INTERVAL"
	EnvRateLimit            = "BULKDELETE_RATE_LIMIT"
	EnvLogLevel             = "BULKDELETE_LOG_LEVEL"
	EnvLogFormat            = "BULKDELETE_LOG_FORMAT"
)

// Endpoint is the credential and address bundle used for every request of a run.
type Endpoint struct {
	BaseURL     string `validate:"required,url"`
	APIKey      string `validate:"required"`
	BearerToken string `validate:"required"`
}

// LogValue keeps credentials out of structured logs.
func (e Endpoint) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", e.BaseURL),
		slog.String("api_key", redact(e.APIKey)),
		slog.String("bearer_token", redact(e.BearerToken)),
	)
}

type Config struct {
	Endpoint

	Workers                int           `validate:"min=1,max=64"`
	Ordered                bool
	RequestTimeout         time.Duration `validate:"gt=0"`
	MaxRetries             int           `validate:"min=0,max=10"`
	RetryInitialInterval   time.Duration `validate:"gte=0"`
	RateLimit              float64       `validate:"gte=0"`
	ContinueOnUnauthorized bool
	AbortOnTransportError  bool

	InputFormat string `validate:"oneof=csv json"`
	SkipHeader  bool
	Delimiter   string `validate:"len=1"`

	OutputFormat string `validate:"oneof=text json"`

	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=json text"`
}

// Option mutates a loaded config before validation; used for CLI flag overrides.
type Option func(*Config)

type configFile struct {
	Endpoint struct {
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		BearerToken string `yaml:"bearer_token"`
	} `yaml:"endpoint"`
	Run struct {
		Workers                int           `yaml:"workers"`
		Ordered                *bool         `yaml:"ordered"`
		RequestTimeout         time.Duration `yaml:"request_timeout"`
		MaxRetries             *int          `yaml:"max_retries"`
		RetryInitialInterval   time.Duration `yaml:"retry_initial_interval"`
		RateLimit              float64       `yaml:"rate_limit"`
		ContinueOnUnauthorized *bool         `yaml:"continue_on_unauthorized"`
		AbortOnTransportError  *bool         `yaml:"abort_on_transport_error"`
	} `yaml:"run"`
	Input struct {
		Format     string `yaml:"format"`
		SkipHeader *bool  `yaml:"skip_header"`
		Delimiter  string `yaml:"delimiter"`
	} `yaml:"input"`
	Output struct {
		Format string `yaml:"format"`
	} `yaml:"output"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Default returns the settings used when nothing overrides them.
func Default() Config {
	return Config{
		Workers:              1,
		Ordered:              true,
		RequestTimeout:       5 * time.Second,
		MaxRetries:           2,
		RetryInitialInterval: 200 * time.Millisecond,
		InputFormat:          "csv",
		Delimiter:            ",",
		OutputFormat:         "text",
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

// LoadConfig layers defaults, the optional YAML file at path, environment
// variables and opts, in that order, then validates the result.
func LoadConfig(path string, opts ...Option) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read config file: %v", model.ErrConfiguration, err)
		}
		if err := applyFile(&cfg, raw); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var settingNames = map[string]string{
	"BaseURL":              EnvAPIURL,
	"APIKey":               EnvAPIKey,
	"BearerToken":          EnvAPIToken,
	"Workers":              "workers",
	"RequestTimeout":       "request timeout",
	"MaxRetries":           "max retries",
	"RetryInitialInterval": "retry initial interval",
	"RateLimit":            "rate limit",
	"InputFormat":          "input format",
	"Delimiter":            "delimiter",
	"OutputFormat":         "output format",
	"LogLevel":             "log level",
	"LogFormat":            "log format",
}

func (c *Config) Validate() error {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	c.InputFormat = strings.ToLower(strings.TrimSpace(c.InputFormat))
	c.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.Delimiter == `\t` {
		c.Delimiter = "\t"
	}

	if err := model.GetValidator().Struct(c); err != nil {
		return model.FormatValidationError(err, settingNames)
	}
	return nil
}

// Comma returns the CSV field delimiter.
func (c *Config) Comma() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	return r
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("%w: parse config file: %v", model.ErrConfiguration, err)
	}

	if f.Endpoint.BaseURL != "" {
		cfg.BaseURL = f.Endpoint.BaseURL
	}
	if f.Endpoint.APIKey != "" {
		cfg.APIKey = f.Endpoint.APIKey
	}
	if f.Endpoint.BearerToken != "" {
		cfg.BearerToken = f.Endpoint.BearerToken
	}

	if f.Run.Workers > 0 {
		cfg.Workers = f.Run.Workers
	}
	if f.Run.Ordered != nil {
		cfg.Ordered = *f.Run.Ordered
	}
	if f.Run.RequestTimeout > 0 {
		cfg.RequestTimeout = f.Run.RequestTimeout
	}
	if f.Run.MaxRetries != nil {
		cfg.MaxRetries = *f.Run.MaxRetries
	}
	if f.Run.RetryInitialInterval > 0 {
		cfg.RetryInitialInterval = f.Run.RetryInitialInterval
	}
	if f.Run.RateLimit > 0 {
		cfg.RateLimit = f.Run.RateLimit
	}
	if f.Run.ContinueOnUnauthorized != nil {
		cfg.ContinueOnUnauthorized = *f.Run.ContinueOnUnauthorized
	}
	if f.Run.AbortOnTransportError != nil {
		cfg.AbortOnTransportError = *f.Run.AbortOnTransportError
	}

	if f.Input.Format != "" {
		cfg.InputFormat = f.Input.Format
	}
	if f.Input.SkipHeader != nil {
		cfg.SkipHeader = *f.Input.SkipHeader
	}
	if f.Input.Delimiter != "" {
		cfg.Delimiter = f.Input.Delimiter
	}
	if f.Output.Format != "" {
		cfg.OutputFormat = f.Output.Format
	}
	if f.Log.Level != "" {
		cfg.LogLevel = f.Log.Level
	}
	if f.Log.Format != "" {
		cfg.LogFormat = f.Log.Format
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.APIKey = getEnv(EnvAPIKey, cfg.APIKey)
	cfg.BearerToken = getEnv(EnvAPIToken, cfg.BearerToken)
	cfg.BaseURL = getEnv(EnvAPIURL, cfg.BaseURL)
	cfg.LogLevel = getEnv(EnvLogLevel, cfg.LogLevel)
	cfg.LogFormat = getEnv(EnvLogFormat, cfg.LogFormat)

	var err error
	if cfg.Workers, err = getEnvInt(EnvWorkers, cfg.Workers); err != nil {
		return err
	}
	if cfg.RequestTimeout, err = getEnvDuration(EnvRequestTimeout, cfg.RequestTimeout); err != nil {
		return err
	}
	if cfg.MaxRetries, err = getEnvInt(EnvMaxRetries, cfg.MaxRetries); err != nil {
		return err
	}
	if cfg.RetryInitialInterval, err = getEnvDuration(EnvRetryInitialInterval, cfg.RetryInitialInterval); err != nil {
		return err
	}
	if cfg.RateLimit, err = getEnvFloat(EnvRateLimit, cfg.RateLimit); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback, nil
	}
	val, err := strconv.Atoi(strings.TrimSpace(valStr))
	if err != nil {
		return fallback, fmt.Errorf("%w: %s must be an integer, got %q", model.ErrConfiguration, key, valStr)
	}
	return val, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	valStr := os.Getenv(key)
	if valStr == "" {
		return fallback, nil
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(valStr), 64)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s must be a number, got %q", model.ErrConfiguration, key, valStr)
	}
	return val, nil
}

// getEnvDuration accepts plain seconds ("10") or a Go duration ("750ms").
func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	valStr := strings.TrimSpace(os.Getenv(key))
	if valStr == "" {
		return fallback, nil
	}
	if val, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(val) * time.Second, nil
	}
	d, err := time.ParseDuration(valStr)
	if err != nil {
		return fallback, fmt.Errorf("%w: %s must be seconds or a duration like 750ms, got %q", model.ErrConfiguration, key, valStr)
	}
	return d, nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

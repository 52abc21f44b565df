package config

import (
	"time"

	redisclient "github.com/vietddude/finecheck/internal/infra/redis"
	"github.com/vietddude/finecheck/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Lookup   LookupConfig       `yaml:"lookup"`
	Retry    RetryConfig        `yaml:"retry"`
	OCR      OCRConfig          `yaml:"ocr"`
	Pool     PoolConfig         `yaml:"pool"`
	Cache    CacheConfig        `yaml:"cache"`
	History  HistoryConfig      `yaml:"history"`
	Redis    redisclient.Config `yaml:"redis"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// LookupConfig describes the upstream lookup service.
type LookupConfig struct {
	BaseURL         string        `yaml:"base_url"`
	CaptchaPath     string        `yaml:"captcha_path"`
	QueryPath       string        `yaml:"query_path"`
	ResultContainer string        `yaml:"result_container"`
	SessionCookie   string        `yaml:"session_cookie"`
	UserAgent       string        `yaml:"user_agent"`
	ClientIP        string        `yaml:"client_ip"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

// RetryConfig is the shared policy applied to every stage.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	Debug       *bool         `yaml:"debug"` // nil = enabled
}

// OCRConfig holds captcha recognition settings.
type OCRConfig struct {
	Language        string `yaml:"language"`
	PreprocessScale int    `yaml:"preprocess_scale"` // 0 or 1 = no preprocessing
}

// PoolConfig caps concurrent lookups.
type PoolConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// HistoryConfig holds lookup history retention.
type HistoryConfig struct {
	Retention time.Duration `yaml:"retention"` // 0 = keep forever
}

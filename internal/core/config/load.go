package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Defaults for the csgt.vn lookup service.
const (
	DefaultBaseURL         = "https://www.csgt.vn"
	DefaultCaptchaPath     = "/lib/captcha/captcha.class.php"
	DefaultQueryPath       = "/?mod=contact&task=tracuu_post&ajax"
	DefaultResultContainer = "#bodyPrint123"
	DefaultSessionCookie   = "PHPSESSID"
	DefaultClientIP        = "9.9.9.91"
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *AppConfig {
	var cfg AppConfig
	cfg.applyDefaults()
	return &cfg
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	l := &cfg.Lookup
	if l.BaseURL == "" {
		l.BaseURL = DefaultBaseURL
	}
	if l.CaptchaPath == "" {
		l.CaptchaPath = DefaultCaptchaPath
	}
	if l.QueryPath == "" {
		l.QueryPath = DefaultQueryPath
	}
	if l.ResultContainer == "" {
		l.ResultContainer = DefaultResultContainer
	}
	if l.SessionCookie == "" {
		l.SessionCookie = DefaultSessionCookie
	}
	if l.UserAgent == "" {
		l.UserAgent = DefaultUserAgent
	}
	if l.ClientIP == "" {
		l.ClientIP = DefaultClientIP
	}
	if l.RequestTimeout == 0 {
		l.RequestTimeout = 10 * time.Second
	}

	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.Delay == 0 {
		cfg.Retry.Delay = 1 * time.Second
	}

	if cfg.OCR.Language == "" {
		cfg.OCR.Language = "eng"
	}
	if cfg.Pool.MaxConcurrent == 0 {
		cfg.Pool.MaxConcurrent = 4
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 30 * time.Minute
	}
}

// RetryDebug reports whether per-attempt logging is enabled.
func (c RetryConfig) RetryDebug() bool {
	return c.Debug == nil || *c.Debug
}

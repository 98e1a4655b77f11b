// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	Port             string
	AllowedOrigins   []string
	AWSRegion        string
	S3Bucket         string
	CloudfrontDomain string
	LogLevel         string

	CaptchaWidth  int
	CaptchaHeight int
	// CaptchaLength 0 keeps each preset's own length.
	CaptchaLength int
	// CaptchaFontPath is a local TrueType file registered as the ideograph font.
	CaptchaFontPath string
	// CaptchaFontKey is the same, fetched from S3.
	CaptchaFontKey string

	RateLimit  int
	RateWindow time.Duration
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGIN", "http://localhost:5173")),
		AWSRegion:        getEnv("AWS_REGION", "ap-northeast-1"),
		S3Bucket:         getEnv("S3_BUCKET", ""),
		CloudfrontDomain: getEnv("CLOUDFRONT_DOMAIN", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		CaptchaFontPath:  getEnv("CAPTCHA_FONT_PATH", ""),
		CaptchaFontKey:   getEnv("CAPTCHA_FONT_KEY", ""),
	}

	var err error
	if cfg.CaptchaWidth, err = getEnvInt("CAPTCHA_WIDTH", 130); err != nil {
		return nil, err
	}
	if cfg.CaptchaHeight, err = getEnvInt("CAPTCHA_HEIGHT", 48); err != nil {
		return nil, err
	}
	if cfg.CaptchaLength, err = getEnvInt("CAPTCHA_LENGTH", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getEnvInt("RATE_LIMIT", 60); err != nil {
		return nil, err
	}
	window := getEnv("RATE_WINDOW", "1m")
	if cfg.RateWindow, err = time.ParseDuration(window); err != nil {
		return nil, fmt.Errorf("invalid RATE_WINDOW %q: %w", window, err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate port is a number
	if _, err := strconv.Atoi(c.Port); err != nil {
		return errors.New("invalid port: must be a number")
	}
	if c.CaptchaWidth <= 0 || c.CaptchaHeight <= 0 {
		return errors.New("invalid captcha size: width and height must be positive")
	}
	if c.CaptchaLength < 0 {
		return errors.New("invalid captcha length: must not be negative")
	}
	if c.RateLimit <= 0 || c.RateWindow <= 0 {
		return errors.New("invalid rate limit: limit and window must be positive")
	}
	if c.CaptchaFontKey != "" && c.S3Bucket == "" {
		return errors.New("CAPTCHA_FONT_KEY requires S3_BUCKET")
	}
	return nil
}

// UploadEnabled reports whether rendered captchas are uploaded to S3.
func (c *Config) UploadEnabled() bool {
	return c.S3Bucket != "" && c.CloudfrontDomain != ""
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", key, value)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

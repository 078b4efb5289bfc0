package config

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the promptline server.
// Precedence: CLI flags > env vars > defaults.
type Config struct {
	HTTPPort  int
	LogLevel  string
	LogFormat string // log output format: "text" or "json"

	// PublicBaseURL overrides the callback base URL derived from incoming
	// requests (e.g. "https://ivr.example.com"). Needed when the server sits
	// behind a proxy that does not forward the external host.
	PublicBaseURL string

	// LogWebhookURL is the Apps Script endpoint keypress events are posted
	// to. Logging is disabled when empty.
	LogWebhookURL string
	LogTimezone   string // IANA timezone for log timestamps

	// Audio prompt URLs used to seed the runtime audio set.
	MenuAudioURL string
	Opt1AudioURL string
	Opt3AudioURL string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string // default caller ID for outbound calls

	AdminToken string // shared secret for the admin console and admin API

	S3Bucket string
	S3Region string

	CORSOrigins string
}

// defaults
const (
	defaultHTTPPort    = 8080
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultLogTimezone = "America/New_York"
	defaultS3Region    = "us-east-1"
)

// envPrefix is the prefix for all promptline environment variables.
const envPrefix = "PROMPTLINE_"

// minAuthTokenLen is the minimum plausible length of a Twilio auth token.
const minAuthTokenLen = 32

// Load parses configuration from CLI flags and environment variables.
// Precedence: CLI flags > env vars > defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("promptline", flag.ContinueOnError)

	fs.IntVar(&cfg.HTTPPort, "http-port", defaultHTTPPort, "HTTP server listen port")
	fs.StringVar(&cfg.LogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", defaultLogFormat, "log output format (text, json)")
	fs.StringVar(&cfg.PublicBaseURL, "public-base-url", "", "external base URL for Twilio callbacks (derived from requests if empty)")
	fs.StringVar(&cfg.LogWebhookURL, "log-webhook-url", "", "Apps Script webhook URL for keypress logging (disabled if empty)")
	fs.StringVar(&cfg.LogTimezone, "log-timezone", defaultLogTimezone, "IANA timezone for log timestamps")
	fs.StringVar(&cfg.MenuAudioURL, "menu-audio-url", "", "https URL of the main menu prompt")
	fs.StringVar(&cfg.Opt1AudioURL, "opt1-audio-url", "", "https URL of the option 1 prompt")
	fs.StringVar(&cfg.Opt3AudioURL, "opt3-audio-url", "", "https URL of the option 3 prompt")
	fs.StringVar(&cfg.TwilioAccountSID, "twilio-account-sid", "", "Twilio account SID")
	fs.StringVar(&cfg.TwilioAuthToken, "twilio-auth-token", "", "Twilio auth token")
	fs.StringVar(&cfg.TwilioFromNumber, "twilio-from-number", "", "default E.164 caller ID for outbound calls")
	fs.StringVar(&cfg.AdminToken, "admin-token", "", "shared secret for admin routes (admin routes disabled if empty)")
	fs.StringVar(&cfg.S3Bucket, "s3-bucket", "", "S3 bucket for audio uploads")
	fs.StringVar(&cfg.S3Region, "s3-region", defaultS3Region, "AWS region of the upload bucket")
	fs.StringVar(&cfg.CORSOrigins, "cors-origins", "", "comma-separated list of allowed CORS origins (use * for all)")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// Apply env var overrides for any flags not explicitly set on the command line.
	// CLI flags take precedence over env vars.
	applyEnvOverrides(fs, cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides checks environment variables for any flag that was not
// explicitly provided on the command line. This preserves the precedence:
// CLI flags > env vars > defaults.
func applyEnvOverrides(fs *flag.FlagSet, cfg *Config) {
	// Track which flags were explicitly set via CLI.
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})

	// Map of flag name to env var name.
	envMap := map[string]string{
		"http-port":          envPrefix + "HTTP_PORT",
		"log-level":          envPrefix + "LOG_LEVEL",
		"log-format":         envPrefix + "LOG_FORMAT",
		"public-base-url":    envPrefix + "PUBLIC_BASE_URL",
		"log-webhook-url":    envPrefix + "LOG_WEBHOOK_URL",
		"log-timezone":       envPrefix + "LOG_TIMEZONE",
		"menu-audio-url":     envPrefix + "MENU_AUDIO_URL",
		"opt1-audio-url":     envPrefix + "OPT1_AUDIO_URL",
		"opt3-audio-url":     envPrefix + "OPT3_AUDIO_URL",
		"twilio-account-sid": envPrefix + "TWILIO_ACCOUNT_SID",
		"twilio-auth-token":  envPrefix + "TWILIO_AUTH_TOKEN",
		"twilio-from-number": envPrefix + "TWILIO_FROM_NUMBER",
		"admin-token":        envPrefix + "ADMIN_TOKEN",
		"s3-bucket":          envPrefix + "S3_BUCKET",
		"s3-region":          envPrefix + "S3_REGION",
		"cors-origins":       envPrefix + "CORS_ORIGINS",
	}

	for flagName, envVar := range envMap {
		if set[flagName] {
			continue
		}
		val, ok := os.LookupEnv(envVar)
		if !ok || val == "" {
			continue
		}
		switch flagName {
		case "http-port":
			if v, err := strconv.Atoi(val); err == nil {
				cfg.HTTPPort = v
			}
		case "log-level":
			cfg.LogLevel = val
		case "log-format":
			cfg.LogFormat = val
		case "public-base-url":
			cfg.PublicBaseURL = val
		case "log-webhook-url":
			cfg.LogWebhookURL = val
		case "log-timezone":
			cfg.LogTimezone = val
		case "menu-audio-url":
			cfg.MenuAudioURL = val
		case "opt1-audio-url":
			cfg.Opt1AudioURL = val
		case "opt3-audio-url":
			cfg.Opt3AudioURL = val
		case "twilio-account-sid":
			cfg.TwilioAccountSID = val
		case "twilio-auth-token":
			cfg.TwilioAuthToken = val
		case "twilio-from-number":
			cfg.TwilioFromNumber = val
		case "admin-token":
			cfg.AdminToken = val
		case "s3-bucket":
			cfg.S3Bucket = val
		case "s3-region":
			cfg.S3Region = val
		case "cors-origins":
			cfg.CORSOrigins = val
		}
	}
}

// validate checks that the config values are sane.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("http-port must be between 1 and 65535, got %d", c.HTTPPort)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("log-level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	c.LogLevel = strings.ToLower(c.LogLevel)

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("log-format must be one of text, json; got %q", c.LogFormat)
	}
	c.LogFormat = strings.ToLower(c.LogFormat)

	if c.LogTimezone != "" {
		if _, err := time.LoadLocation(c.LogTimezone); err != nil {
			return fmt.Errorf("log-timezone %q is not a valid IANA timezone", c.LogTimezone)
		}
	}

	// Prompt URLs must be https once configured; the telephony provider
	// refuses to fetch media over plain http.
	for _, u := range []struct{ name, val string }{
		{"menu-audio-url", c.MenuAudioURL},
		{"opt1-audio-url", c.Opt1AudioURL},
		{"opt3-audio-url", c.Opt3AudioURL},
	} {
		if u.val != "" && !strings.HasPrefix(u.val, "https://") {
			return fmt.Errorf("%s must start with https://, got %q", u.name, u.val)
		}
	}

	if c.PublicBaseURL != "" && !strings.HasPrefix(c.PublicBaseURL, "http") {
		return fmt.Errorf("public-base-url must be an absolute URL, got %q", c.PublicBaseURL)
	}
	c.PublicBaseURL = strings.TrimRight(c.PublicBaseURL, "/")

	return nil
}

// TwilioConfigured reports whether plausible Twilio credentials are present.
// Account SIDs always carry the "AC" prefix; auth tokens are 32 hex chars.
func (c *Config) TwilioConfigured() bool {
	return strings.HasPrefix(c.TwilioAccountSID, "AC") && len(c.TwilioAuthToken) >= minAuthTokenLen
}

// StorageConfigured reports whether the upload bucket is configured.
func (c *Config) StorageConfigured() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// AdminConfigured reports whether the admin shared secret is set.
func (c *Config) AdminConfigured() bool {
	return c.AdminToken != ""
}

// Location resolves the configured log timezone. Falls back to UTC when the
// timezone is empty or cannot be loaded.
func (c *Config) Location() *time.Location {
	if c.LogTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.LogTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SlogHandler returns a slog.Handler configured with the appropriate format
// (text or json) and log level.
func (c *Config) SlogHandler(w *os.File) slog.Handler {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SlogLevel returns the slog.Level corresponding to the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

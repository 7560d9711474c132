package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"
)

// Config contains runtime configuration values.
type Config struct {
	WebhookURL     string
	WebhookName    string
	RequestTimeout time.Duration
	HeartbeatCron  string
	FeedPath       string
	StripHTML      bool
	RatePerSec     float64
	RateBurst      int
	LogLevel       string
	LogFormat      string
	PushgatewayURL string
	PushJobName    string
	Destinations   []Destination
}

// Destination is one named webhook target. URL may be given directly or
// resolved from the environment variable named by URLEnv, so config files
// never carry the secret-bearing webhook path.
type Destination struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	URLEnv string `yaml:"url_env"`
}

const (
	defaultWebhookName = "default"
	defaultTimeout     = 30 * time.Second
	defaultCron        = "0 * * * *" // top of every hour
	defaultRatePerSec  = 1.0
	defaultRateBurst   = 5
	defaultLogLevel    = "info"
	defaultLogFormat   = "json"
	defaultPushJobName = "dev-notify"
)

// Load builds a Config from environment variables with sane defaults and,
// when path is non-empty, overlays the YAML file at path on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		WebhookURL:     getenvDefault("DEV_NOTIFY_WEBHOOK_URL", ""),
		WebhookName:    getenvDefault("DEV_NOTIFY_WEBHOOK_NAME", defaultWebhookName),
		RequestTimeout: parseDurationDefault("REQUEST_TIMEOUT", defaultTimeout),
		HeartbeatCron:  getenvDefault("HEARTBEAT_CRON", defaultCron),
		FeedPath:       getenvDefault("FEED_PATH", ""),
		StripHTML:      parseBoolDefault("STRIP_HTML", false),
		RatePerSec:     parseFloatDefault("RATE_PER_SEC", defaultRatePerSec),
		RateBurst:      parseIntDefault("RATE_BURST", defaultRateBurst),
		LogLevel:       getenvDefault("LOG_LEVEL", defaultLogLevel),
		LogFormat:      getenvDefault("LOG_FORMAT", defaultLogFormat),
		PushgatewayURL: getenvDefault("PROMETHEUS_PUSHGATEWAY_URL", ""),
		PushJobName:    getenvDefault("PROMETHEUS_JOB_NAME", defaultPushJobName),
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = defaultRatePerSec
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}

	return cfg, nil
}

// ResolveDestinations returns the final delivery targets. File-configured
// destinations take precedence; DEV_NOTIFY_WEBHOOK_URL is the fallback.
// Destinations whose url_env variable is unset are returned in skipped so
// the caller can log them.
func (c *Config) ResolveDestinations() (resolved []Destination, skipped []string, err error) {
	for _, d := range c.Destinations {
		url := d.URL
		if url == "" && d.URLEnv != "" {
			url = os.Getenv(d.URLEnv)
		}
		if url == "" {
			skipped = append(skipped, d.Name)
			continue
		}
		name := d.Name
		if name == "" {
			name = defaultWebhookName
		}
		resolved = append(resolved, Destination{Name: name, URL: url})
	}

	if len(resolved) == 0 && c.WebhookURL != "" {
		resolved = append(resolved, Destination{Name: c.WebhookName, URL: c.WebhookURL})
	}

	if len(resolved) == 0 {
		return nil, skipped, fmt.Errorf("no webhook destination configured: set DEV_NOTIFY_WEBHOOK_URL or list destinations in the config file")
	}

	return resolved, skipped, nil
}

// fileConfig mirrors the YAML layout of the optional daemon config file.
type fileConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	HeartbeatCron  string        `yaml:"heartbeat_cron"`
	Feed           struct {
		Path      string `yaml:"path"`
		StripHTML *bool  `yaml:"strip_html"`
	} `yaml:"feed"`
	Rate struct {
		PerSec float64 `yaml:"per_sec"`
		Burst  int     `yaml:"burst"`
	} `yaml:"rate"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Push struct {
		GatewayURL string `yaml:"gateway_url"`
		JobName    string `yaml:"job_name"`
	} `yaml:"push"`
	Destinations []Destination `yaml:"destinations"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}

	if file.RequestTimeout > 0 {
		c.RequestTimeout = file.RequestTimeout
	}
	if file.HeartbeatCron != "" {
		c.HeartbeatCron = file.HeartbeatCron
	}
	if file.Feed.Path != "" {
		c.FeedPath = file.Feed.Path
	}
	if file.Feed.StripHTML != nil {
		c.StripHTML = *file.Feed.StripHTML
	}
	if file.Rate.PerSec > 0 {
		c.RatePerSec = file.Rate.PerSec
	}
	if file.Rate.Burst > 0 {
		c.RateBurst = file.Rate.Burst
	}
	if file.Log.Level != "" {
		c.LogLevel = file.Log.Level
	}
	if file.Log.Format != "" {
		c.LogFormat = file.Log.Format
	}
	if file.Push.GatewayURL != "" {
		c.PushgatewayURL = file.Push.GatewayURL
	}
	if file.Push.JobName != "" {
		c.PushJobName = file.Push.JobName
	}
	if len(file.Destinations) > 0 {
		c.Destinations = file.Destinations
	}

	return nil
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseIntDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseFloatDefault(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func parseBoolDefault(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func parseDurationDefault(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

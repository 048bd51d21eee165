package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config is read from .env (TOML) in the working directory when present,
 * overridden by environment variables
 */

type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	ShopifyAPIVersion     string  `mapstructure:"SHOPIFY_API_VERSION"`
	ShopifyWebhookSecret  string  `mapstructure:"SHOPIFY_WEBHOOK_SECRET"`
	ShopifyMaxRetries     int     `mapstructure:"SHOPIFY_MAX_RETRIES"`
	ShopifyAttemptTimeout int     `mapstructure:"SHOPIFY_ATTEMPT_TIMEOUT_SECONDS"`
	ShopifyRequestsPerSec float64 `mapstructure:"SHOPIFY_REQUESTS_PER_SECOND"`
	ShopifyRequestBurst   int     `mapstructure:"SHOPIFY_REQUEST_BURST"`

	EventBus            string `mapstructure:"EVENT_BUS"`
	EventDedupeTTLHours int    `mapstructure:"EVENT_DEDUPE_TTL_HOURS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"` // comma separated
	KafkaTopic   string `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	TopicsFile string `mapstructure:"TOPICS_FILE"`

	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
}

var defaults = map[string]any{
	"PORT":                            "8080",
	"LOG_LEVEL":                       "info",
	"SHOPIFY_API_VERSION":             "2022-04",
	"SHOPIFY_WEBHOOK_SECRET":          "",
	"SHOPIFY_MAX_RETRIES":             5,
	"SHOPIFY_ATTEMPT_TIMEOUT_SECONDS": 30,
	"SHOPIFY_REQUESTS_PER_SECOND":     2.0,
	"SHOPIFY_REQUEST_BURST":           40,
	"EVENT_BUS":                       "redis",
	"EVENT_DEDUPE_TTL_HOURS":          24,
	"REDIS_ADDR":                      "localhost:6379",
	"REDIS_PASSWORD":                  "",
	"REDIS_DB":                        0,
	"KAFKA_BROKERS":                   "",
	"KAFKA_TOPIC":                     "shopify-events",
	"KAFKA_GROUP_ID":                  "wkflws-shopify",
	"TOPICS_FILE":                     "",
	"OTEL_EXPORTER_OTLP_ENDPOINT":     "",
	"OTEL_EXPORTER_OTLP_INSECURE":     false,
}

func GetConfig() (*Config, error) {
	return load(".")
}

func load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if config.ShopifyMaxRetries < 0 {
		return nil, fmt.Errorf("SHOPIFY_MAX_RETRIES cannot be negative")
	}
	return &config, nil
}

// Brokers splits KafkaBrokers into addresses
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) DedupeTTL() time.Duration {
	return time.Duration(c.EventDedupeTTLHours) * time.Hour
}

func (c *Config) AttemptTimeout() time.Duration {
	return time.Duration(c.ShopifyAttemptTimeout) * time.Second
}

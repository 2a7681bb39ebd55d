package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds typed configuration for the api-gateway service.
type Config struct {
	LogLevel        string
	HTTPPort        string
	MetricsAddr     string
	Store           string
	PostgresDSN     string
	KafkaBrokers    string
	RedisAddr       string
	RateLimit       int
	RateLimitWindow time.Duration
	MaxBodyBytes    int64
	OTelEndpoint    string
}

// Load reads all values from the given viper instance.
func Load(v *viper.Viper) Config {
	return Config{
		LogLevel:        v.GetString("log_level"),
		HTTPPort:        v.GetString("http_port"),
		MetricsAddr:     v.GetString("metrics_addr"),
		Store:           v.GetString("store"),
		PostgresDSN:     v.GetString("postgres_dsn"),
		KafkaBrokers:    v.GetString("kafka_brokers"),
		RedisAddr:       v.GetString("redis_addr"),
		RateLimit:       v.GetInt("rate_limit"),
		RateLimitWindow: v.GetDuration("rate_limit_window"),
		MaxBodyBytes:    v.GetInt64("max_body_bytes"),
		OTelEndpoint:    v.GetString("otel_endpoint"),
	}
}

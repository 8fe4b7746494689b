package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Services     ServicesConfig     `yaml:"services"`
	Breaker      BreakerConfig      `yaml:"breaker"`
	Compensation CompensationConfig `yaml:"compensation"`
	Redis        RedisConfig        `yaml:"redis"`
	Kafka        KafkaConfig        `yaml:"kafka"`
	Cache        CacheConfig        `yaml:"cache"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

// ServicesConfig holds the base URL of each downstream. The env vars
// FLIGHT_SERVICE_HOST, TICKET_SERVICE_HOST and BONUS_SERVICE_HOST take
// precedence over the yaml values.
type ServicesConfig struct {
	FlightURL string `yaml:"flight_url"`
	TicketURL string `yaml:"ticket_url"`
	BonusURL  string `yaml:"bonus_url"`
}

type BreakerConfig struct {
	FailureThreshold       uint32 `yaml:"failure_threshold"`
	RecoveryTimeoutSeconds int    `yaml:"recovery_timeout_seconds"`
	RequestTimeoutSeconds  int    `yaml:"request_timeout_seconds"`
}

func (b BreakerConfig) RecoveryTimeout() time.Duration {
	return time.Duration(b.RecoveryTimeoutSeconds) * time.Second
}

func (b BreakerConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

type CompensationConfig struct {
	RetryIntervalSeconds int `yaml:"retry_interval_seconds"`
}

func (c CompensationConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalSeconds) * time.Second
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	TicketEventsTopic  string   `yaml:"ticket_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type CacheConfig struct {
	FlightsTTLSeconds int `yaml:"flights_ttl_seconds"`
}

func (c CacheConfig) FlightsTTL() time.Duration {
	return time.Duration(c.FlightsTTLSeconds) * time.Second
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Breaker.FailureThreshold == 0 {
		c.Breaker.FailureThreshold = 3
	}
	if c.Breaker.RecoveryTimeoutSeconds == 0 {
		c.Breaker.RecoveryTimeoutSeconds = 10
	}
	if c.Breaker.RequestTimeoutSeconds == 0 {
		c.Breaker.RequestTimeoutSeconds = 2
	}
	if c.Compensation.RetryIntervalSeconds == 0 {
		c.Compensation.RetryIntervalSeconds = 10
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FLIGHT_SERVICE_HOST"); v != "" {
		c.Services.FlightURL = v
	}
	if v := os.Getenv("TICKET_SERVICE_HOST"); v != "" {
		c.Services.TicketURL = v
	}
	if v := os.Getenv("BONUS_SERVICE_HOST"); v != "" {
		c.Services.BonusURL = v
	}
}

// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port int `yaml:"port"` // health + metrics
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AIConfig struct {
	MistralKey string `yaml:"mistral_key"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
}

type PaymentConfig struct {
	CryptoCloud struct {
		APIKey  string `yaml:"api_key"`
		ShopID  string `yaml:"shop_id"`
		BaseURL string `yaml:"base_url"`
	} `yaml:"cryptocloud"`
}

type QuotaConfig struct {
	// FloodWindow bounds how often a single user may issue commands,
	// independent of the daily free quota.
	FloodLimit  int           `yaml:"flood_limit"`
	FloodWindow time.Duration `yaml:"flood_window"`
}

type SubscriptionConfig struct {
	// Stacking makes renewals append to the remaining window instead of
	// overwriting it. Off by default (historical behavior).
	Stacking bool `yaml:"stacking"`
}

type Config struct {
	Bot          BotConfig          `yaml:"bot"`
	Log          LogConfig          `yaml:"log"`
	Admin        AdminConfig        `yaml:"admin"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	AI           AIConfig           `yaml:"ai"`
	Payment      PaymentConfig      `yaml:"payment"`
	Quota        QuotaConfig        `yaml:"quota"`
	Subscription SubscriptionConfig `yaml:"subscription"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// defaults
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 8081
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "mistral-medium-latest"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.mistral.ai/v1"
	}
	if cfg.Payment.CryptoCloud.BaseURL == "" {
		cfg.Payment.CryptoCloud.BaseURL = "https://api.cryptocloud.plus/v2"
	}
	if cfg.Quota.FloodLimit <= 0 {
		cfg.Quota.FloodLimit = 20
	}
	if cfg.Quota.FloodWindow <= 0 {
		cfg.Quota.FloodWindow = time.Minute
	}

	// Minimal validation
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}
	if cfg.AI.MistralKey == "" {
		return nil, errors.New("ai.mistral_key is required")
	}
	if cfg.Payment.CryptoCloud.APIKey == "" || cfg.Payment.CryptoCloud.ShopID == "" {
		return nil, errors.New("payment.cryptocloud.api_key and shop_id are required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

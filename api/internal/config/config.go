package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"screening-bot/api/internal/predict"
)

type Config struct {
	Port string

	TelegramBotToken string
	WebhookURL       string

	PredictBaseURL string
	DatabaseURL    string
	LogLevel       string

	RateRPS   float64
	RateBurst int
}

// fileConfig — YAML из CONFIG_PATH. Переменные окружения главнее файла.
type fileConfig struct {
	Port           string `yaml:"port"`
	WebhookURL     string `yaml:"webhookURL"`
	PredictBaseURL string `yaml:"predictBaseURL"`
	DatabaseURL    string `yaml:"databaseURL"`
	LogLevel       string `yaml:"logLevel"`
	Proxy          struct {
		RateRPS   *float64 `yaml:"rateRPS"`
		RateBurst *int     `yaml:"rateBurst"`
	} `yaml:"proxy"`
}

func defaults() *Config {
	return &Config{
		Port:           "8080",
		PredictBaseURL: predict.DefaultBaseURL,
		LogLevel:       "info",
		RateRPS:        5,
		RateBurst:      10,
	}
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// Load собирает конфиг: значения по умолчанию, затем файл CONFIG_PATH, затем env.
// Битый файл — ошибка запуска.
func Load() *Config {
	cfg, err := load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// LoadBot — Load плюс обязательный TELEGRAM_BOT_TOKEN.
func LoadBot() *Config {
	cfg := Load()
	cfg.TelegramBotToken = mustEnv("TELEGRAM_BOT_TOKEN")
	return cfg
}

func load() (*Config, error) {
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := cfg.mergeYAML(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeYAML(data []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	if f.Port != "" {
		c.Port = f.Port
	}
	if f.WebhookURL != "" {
		c.WebhookURL = f.WebhookURL
	}
	if f.PredictBaseURL != "" {
		c.PredictBaseURL = f.PredictBaseURL
	}
	if f.DatabaseURL != "" {
		c.DatabaseURL = f.DatabaseURL
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.Proxy.RateRPS != nil {
		c.RateRPS = *f.Proxy.RateRPS
	}
	if f.Proxy.RateBurst != nil {
		c.RateBurst = *f.Proxy.RateBurst
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)
	c.PredictBaseURL = getEnv("PREDICT_BASE_URL", c.PredictBaseURL)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DatabaseURL = resolveDSN(c.DatabaseURL)

	if v := getEnv("PROXY_RATE_RPS", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PROXY_RATE_RPS: %w", err)
		}
		c.RateRPS = f
	}
	if v := getEnv("PROXY_RATE_BURST", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PROXY_RATE_BURST: %w", err)
		}
		c.RateBurst = n
	}
	return nil
}

// resolveDSN: DATABASE_URL, затем значение из файла, затем POSTGRES_*/PG*.
// Пустая строка — база не настроена.
func resolveDSN(fromFile string) string {
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return v
	}
	if fromFile != "" {
		return fromFile
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	host := getEnv("PGHOST", "")
	if pass == "" && host == "" {
		return ""
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(getEnv("POSTGRES_USER", "screening"), pass),
		Host:     net.JoinHostPort(getEnv("PGHOST", "db"), getEnv("PGPORT", "5432")),
		Path:     "/" + getEnv("POSTGRES_DB", "screening"),
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

package config

import (
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App struct {
		Env       string `env:"APP_ENV" env-default:"development"`
		Port      int    `env:"APP_PORT" env-default:"8080"`
		LogLevel  string `env:"LOG_LEVEL" env-default:"info"`
		SentryUrl string `env:"SENTRY_URL"`
	}
	Upstream struct {
		APIKey  string        `env:"INSTAGRAM_API_KEY" env-description:"RapidAPI key forwarded as x-rapidapi-key"`
		BaseURL string        `env:"UPSTREAM_BASE_URL" env-default:"https://instagram120.p.rapidapi.com"`
		Host    string        `env:"UPSTREAM_HOST" env-default:"instagram120.p.rapidapi.com"`
		Schema  string        `env:"UPSTREAM_SCHEMA" env-default:"instagram120"`
		Timeout time.Duration `env:"UPSTREAM_TIMEOUT" env-default:"30s"`
	}
	ImageProxy struct {
		Timeout        time.Duration `env:"IMAGE_TIMEOUT" env-default:"10s"`
		AllowedDomains []string      `env:"IMAGE_ALLOWED_DOMAINS" env-default:"instagram.com,cdninstagram.com,fbcdn.net,scontent" env-separator:","`
		MaxBytes       int64         `env:"IMAGE_MAX_BYTES" env-default:"20971520"`
		UserAgent      string        `env:"IMAGE_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"`
	}
}

var (
	once sync.Once
	cfg  *Config
)

// New reads the configuration once per process. A .env file in the working
// directory is honored when present; the environment always wins.
func New() (*Config, error) {
	once.Do(func() {
		cfg = &Config{}
		if err := read(cfg); err != nil {
			help, _ := cleanenv.GetDescription(cfg, nil)
			log.Fatalf("Failed to read configuration: %v\n%v", err, help)
		}
	})
	return cfg, nil
}

func read(c *Config) error {
	if _, err := os.Stat(".env"); err == nil {
		return cleanenv.ReadConfig(".env", c)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return cleanenv.ReadEnv(c)
}

// Default reads the environment and env-default tags without touching the
// process-wide instance or the .env file.
func Default() *Config {
	c := &Config{}
	_ = cleanenv.ReadEnv(c)
	return c
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

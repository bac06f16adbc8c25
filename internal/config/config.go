package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BotToken     string `yaml:"bot_token"`
	AdminID      int64  `yaml:"admin_id"`
	DatabasePath string `yaml:"database_path"`

	Addr              string        `yaml:"addr"`
	APITimeout        time.Duration `yaml:"timeout"`
	JWTSecret         string        `yaml:"jwt_secret"`
	TokenDuration     time.Duration `yaml:"token_duration"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`

	Telegram TelegramConfig `yaml:"telegram"`
	Dispatch DispatchConfig `yaml:"dispatch"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type TelegramConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	PollTimeout time.Duration `yaml:"poll_timeout"`
	Retries     int           `yaml:"retries"`
	Backoff     time.Duration `yaml:"backoff"`
}

type DispatchConfig struct {
	Spacing     time.Duration `yaml:"spacing"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

type MetricsConfig struct {
	// RunAt is the local wall-clock time (HH:MM) of the daily aggregation run.
	RunAt string `yaml:"run_at"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		BotToken:          os.Getenv("BOT_TOKEN"),
		DatabasePath:      getEnv("DATABASE_PATH", "sidehustle.db"),
		Addr:              getEnv("SIDEHUSTLE_ADDR", ":8080"),
		APITimeout:        15 * time.Second,
		JWTSecret:         getEnv("SIDEHUSTLE_JWT_SECRET", ""),
		TokenDuration:     1 * time.Hour,
		AdminPasswordHash: getEnv("SIDEHUSTLE_ADMIN_PASSWORD_HASH", ""),
		Telegram: TelegramConfig{
			BaseURL:     getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),
			Timeout:     30 * time.Second,
			PollTimeout: 60 * time.Second,
			Retries:     2,
			Backoff:     500 * time.Millisecond,
		},
		Dispatch: DispatchConfig{
			Spacing:     100 * time.Millisecond,
			SendTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			RunAt: "23:59",
		},
	}

	if v := os.Getenv("ADMIN_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_ID %q: %w", v, err)
		}
		cfg.AdminID = id
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, cfg.Validate()
}

// Validate enforces the startup contract: a missing bot token is fatal, a
// missing admin id only disables the admin surface.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.Metrics.RunAt != "" {
		if _, err := time.Parse("15:04", c.Metrics.RunAt); err != nil {
			return fmt.Errorf("invalid metrics run_at %q: %w", c.Metrics.RunAt, err)
		}
	}
	return nil
}

// AdminEnabled reports whether a privileged admin id is configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminID != 0
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

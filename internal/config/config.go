package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const placeholderToken = "YOUR_BOT_TOKEN_HERE"

type Config struct {
	App        AppConfig        `yaml:"app"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	API        APIConfig        `yaml:"api"`
	Payment    PaymentConfig    `yaml:"payment"`
	Web        WebConfig        `yaml:"web"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Google     GoogleConfig     `yaml:"google"`
	Pagination PaginationConfig `yaml:"pagination"`
}

type AppConfig struct {
	Name         string `yaml:"name"`
	Environment  string `yaml:"environment"`
	Version      string `yaml:"version"`
	Tagline      string `yaml:"tagline"`
	About        string `yaml:"about"`
	ContactEmail string `yaml:"contact_email"`
	ContactPhone string `yaml:"contact_phone"`
	Address      string `yaml:"address"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Debug    bool   `yaml:"debug"`
}

// APIConfig points at the remote Area Hood REST API.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// RequestTimeout of 0 leaves requests unbounded; cancellation then
	// only comes from the caller's context.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`
}

type PaymentConfig struct {
	PublicKey string `yaml:"public_key"`
	Currency  string `yaml:"currency"`
	// CheckoutBaseURL is the public URL of the web server hosting the checkout page.
	CheckoutBaseURL string        `yaml:"checkout_base_url"`
	PendingTTL      time.Duration `yaml:"pending_ttl"`
}

type WebConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	PoolSize  int    `yaml:"pool_size"`
	KeyPrefix string `yaml:"key_prefix"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type GoogleConfig struct {
	CredentialsFile      string `yaml:"credentials_file"`
	RentalsSpreadsheetID string `yaml:"rentals_spreadsheet_id"`
	UsersSpreadsheetID   string `yaml:"users_spreadsheet_id"`
}

// Enabled reports whether the admin Sheets sync is configured.
func (g GoogleConfig) Enabled() bool {
	return g.CredentialsFile != "" && g.RentalsSpreadsheetID != "" && g.UsersSpreadsheetID != ""
}

type PaginationConfig struct {
	PageSize int `yaml:"page_size"`
}

// Load reads the YAML file at configPath. A .env file next to the binary is
// loaded first when present and ${VARS} in the YAML are expanded.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes raw YAML after environment expansion and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "Area Hood"
	}
	if c.API.UserAgent == "" {
		c.API.UserAgent = "areahood-client"
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "NGN"
	}
	if c.Payment.PendingTTL == 0 {
		c.Payment.PendingTTL = time.Hour
	}
	if c.Web.Address == "" {
		c.Web.Address = ":8080"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "areahood"
	}
	if c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Pagination.PageSize <= 0 {
		c.Pagination.PageSize = 5
	}
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" || c.Telegram.BotToken == placeholderToken {
		return errors.New("telegram.bot_token is not set")
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is not set")
	}
	if c.Payment.Currency != "NGN" {
		return fmt.Errorf("payment.currency %q is not supported", c.Payment.Currency)
	}
	return nil
}

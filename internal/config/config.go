// Load envs from .env
// Load YAML config
// Apply env overrides and defaults
// Validate config

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"go-wellfound-scraper/internal/domain"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	BaseURL         string `yaml:"base_url"`
	CredentialsPath string `yaml:"credentials_path"`
	CookiesPath     string `yaml:"cookies_path"`
	ScreenshotDir   string `yaml:"screenshot_dir"`
	LogLevel        string `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	Store   StoreConfig   `yaml:"store"`
	Browser BrowserConfig `yaml:"browser"`
	Timings Timings       `yaml:"timings"`

	QueueSize int `yaml:"queue_size"`
	MaxScroll int `yaml:"max_scroll"`

	TelegramToken  string `yaml:"telegram_token"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ShutdownGraceMs int    `yaml:"shutdown_grace_ms"`
}

type StoreConfig struct {
	// Driver is "file" or "postgres"
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
}

type BrowserConfig struct {
	Headless  bool `yaml:"headless"`
	TimeoutMs int  `yaml:"timeout_ms"`
	// names of the two session cookies inside the cookie file
	PrimaryCookie string `yaml:"primary_cookie"`
	AntiBotCookie string `yaml:"antibot_cookie"`
}

// Timings holds the settle intervals in milliseconds.
type Timings struct {
	LoginSettleMs  int `yaml:"login_settle_ms"`
	TabSettleMs    int `yaml:"tab_settle_ms"`
	ChipSettleMs   int `yaml:"chip_settle_ms"`
	TypeSettleMs   int `yaml:"type_settle_ms"`
	EnterSettleMs  int `yaml:"enter_settle_ms"`
	ScrollSettleMs int `yaml:"scroll_settle_ms"`
	HomeSettleMs   int `yaml:"home_settle_ms"`
}

// DefaultTimings mirrors the delays the site needs to render after each action.
func DefaultTimings() Timings {
	return Timings{
		LoginSettleMs:  2500,
		TabSettleMs:    1000,
		ChipSettleMs:   500,
		TypeSettleMs:   1500,
		EnterSettleMs:  1000,
		ScrollSettleMs: 2500,
		HomeSettleMs:   2500,
	}
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

func (t Timings) LoginSettle() time.Duration  { return ms(t.LoginSettleMs) }
func (t Timings) TabSettle() time.Duration    { return ms(t.TabSettleMs) }
func (t Timings) ChipSettle() time.Duration   { return ms(t.ChipSettleMs) }
func (t Timings) TypeSettle() time.Duration   { return ms(t.TypeSettleMs) }
func (t Timings) EnterSettle() time.Duration  { return ms(t.EnterSettleMs) }
func (t Timings) ScrollSettle() time.Duration { return ms(t.ScrollSettleMs) }
func (t Timings) HomeSettle() time.Duration   { return ms(t.HomeSettleMs) }

func (b BrowserConfig) Timeout() time.Duration { return ms(b.TimeoutMs) }

func (s ServerConfig) ShutdownGrace() time.Duration { return ms(s.ShutdownGraceMs) }

// Load reads the YAML file at path (optional when it does not exist), applies
// env overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("SCRAPER_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := &Config{
		Browser: BrowserConfig{Headless: false},
		Timings: DefaultTimings(),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// running on defaults and env only
	case err != nil:
		return nil, &domain.ConfigError{Path: path, Err: err}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ConfigError{Path: path, Err: fmt.Errorf("parse yaml: %w", err)}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, &domain.ConfigError{Err: err}
	}
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, &domain.ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		c.Store.DatabaseURL = dbURL
	}
	if driver := os.Getenv("STORE_DRIVER"); driver != "" {
		c.Store.Driver = driver
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if headless := os.Getenv("HEADLESS"); headless != "" {
		v, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid HEADLESS: %w", err)
		}
		c.Browser.Headless = v
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		c.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		c.TelegramChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://wellfound.com/"
	}
	if c.CredentialsPath == "" {
		c.CredentialsPath = ".env"
	}
	if c.CookiesPath == "" {
		c.CookiesPath = "cookies.json"
	}
	if c.ScreenshotDir == "" {
		c.ScreenshotDir = "./screenshots"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.ShutdownGraceMs == 0 {
		c.Server.ShutdownGraceMs = 30000
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "file"
	}
	if c.Store.Path == "" {
		c.Store.Path = "JobData.json"
	}
	if c.Browser.TimeoutMs == 0 {
		c.Browser.TimeoutMs = 30000
	}
	if c.Browser.PrimaryCookie == "" {
		c.Browser.PrimaryCookie = "_wellfound"
	}
	if c.Browser.AntiBotCookie == "" {
		c.Browser.AntiBotCookie = "datadome"
	}
	if c.QueueSize == 0 {
		c.QueueSize = 100
	}
	if c.MaxScroll == 0 {
		c.MaxScroll = 100
	}
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	switch c.Store.Driver {
	case "file":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("queue_size must be positive")
	}
	if c.MaxScroll < 0 {
		return fmt.Errorf("max_scroll must not be negative")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// Credentials are the login fields read from the credentials file.
type Credentials struct {
	Email    string
	Password string
}

// LoadCredentials reads EMAIL and PASSWORD from a dotenv-style file.
func LoadCredentials(path string) (Credentials, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return Credentials{}, &domain.ConfigError{Path: path, Err: err}
	}
	creds := Credentials{Email: values["EMAIL"], Password: values["PASSWORD"]}
	if creds.Email == "" || creds.Password == "" {
		return Credentials{}, &domain.ConfigError{Path: path, Err: errors.New("EMAIL and PASSWORD are required")}
	}
	return creds, nil
}

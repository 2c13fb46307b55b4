// Load envs from .env
// Load YAML config
// Apply env overrides
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

type Config struct {
	TelegramToken  string   `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64    `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`
	Keywords       []string `yaml:"keywords"`

	StartURL   string `yaml:"start_url"`
	ListenAddr string `yaml:"listen_addr" env:"RADAR_LISTEN_ADDR"`
	Headless   bool   `yaml:"headless" env:"RADAR_HEADLESS"`
	Debug      bool   `yaml:"debug"`

	//Paths
	CookiesPath string `yaml:"cookies_path"`
	DataDir     string `yaml:"data_dir"`

	Watch WatchConfig `yaml:"watch"`
	Tabs  TabsConfig  `yaml:"tabs"`
}

type WatchConfig struct {
	PollInterval  time.Duration `yaml:"poll_interval"`
	MaxWait       time.Duration `yaml:"max_wait"`
	MutationGrace time.Duration `yaml:"mutation_grace"`
	CardDepth     int           `yaml:"card_depth"`
	CountDelay    time.Duration `yaml:"count_delay"`
	CountFallback time.Duration `yaml:"count_fallback"`
}

type TabsConfig struct {
	MinDelay time.Duration `yaml:"min_delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
}

// TelegramEnabled reports whether both bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// Load reads .env, the yaml file at path and the environment, in that order.
// A missing yaml file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseFile(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: Could not read %s: %v", path, err)
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if addr := os.Getenv("RADAR_LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}

	if headless := os.Getenv("RADAR_HEADLESS"); headless != "" {
		v, err := strconv.ParseBool(headless)
		if err != nil {
			return fmt.Errorf("invalid RADAR_HEADLESS: %w", err)
		}
		cfg.Headless = v
	}

	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = []string{"JavaScript", "Python", "Go", "Remote"}
	}
	if cfg.StartURL == "" {
		cfg.StartURL = "https://www.linkedin.com/jobs/search/"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies/cookies-linkedin.json"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = ".data"
	}

	w := &cfg.Watch
	if w.PollInterval <= 0 {
		w.PollInterval = 500 * time.Millisecond
	}
	if w.MaxWait <= 0 {
		w.MaxWait = 10 * time.Second
	}
	if w.MutationGrace <= 0 {
		w.MutationGrace = 2 * time.Second
	}
	if w.CardDepth <= 0 {
		w.CardDepth = 7
	}
	if w.CountDelay <= 0 {
		w.CountDelay = time.Second
	}
	if w.CountFallback <= 0 {
		w.CountFallback = 3 * time.Second
	}

	if cfg.Tabs.MinDelay <= 0 {
		cfg.Tabs.MinDelay = 3 * time.Second
	}
	if cfg.Tabs.MaxDelay <= 0 {
		cfg.Tabs.MaxDelay = 5 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Tabs.MaxDelay < c.Tabs.MinDelay {
		return fmt.Errorf("tabs.max_delay (%s) is lower than tabs.min_delay (%s)", c.Tabs.MaxDelay, c.Tabs.MinDelay)
	}
	if c.Watch.CountFallback < c.Watch.CountDelay {
		return fmt.Errorf("watch.count_fallback (%s) is lower than watch.count_delay (%s)", c.Watch.CountFallback, c.Watch.CountDelay)
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == 0) {
		log.Printf("⚠️ Telegram needs both TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID, notifications disabled")
	}
	return nil
}

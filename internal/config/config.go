// Package config loads the bot configuration from a YAML file with
// environment overrides. Secrets (bot token, API keys) come from the
// environment, optionally via a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceJSON   = "json"
	SourceSQLite = "sqlite"
	SourceSheets = "sheets"
)

// Config is the full bot configuration.
type Config struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"`

	Menu     MenuConfig     `yaml:"menu"`
	Source   SourceConfig   `yaml:"source"`
	Download DownloadConfig `yaml:"download"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// MenuConfig controls navigation behavior and menu caching.
type MenuConfig struct {
	BackLabel       string `yaml:"back_label"`
	MainMenuLabel   string `yaml:"main_menu_label"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`
	// SuppressRenderAfterDelivery skips the menu re-render when a press
	// delivered content.
	SuppressRenderAfterDelivery bool `yaml:"suppress_render_after_delivery"`
	// SessionIdleMinutes evicts sessions idle longer than this; 0 keeps
	// them forever.
	SessionIdleMinutes int `yaml:"session_idle_minutes"`
}

// SourceConfig selects and configures the menu backend.
type SourceConfig struct {
	Kind          string `yaml:"kind"` // json | sqlite | sheets
	JSONPath      string `yaml:"json_path"`
	SQLitePath    string `yaml:"sqlite_path"`
	SpreadsheetID string `yaml:"spreadsheet_id"`
	GoogleAPIKey  string `yaml:"google_api_key"`
}

// DownloadConfig controls the file retriever.
type DownloadConfig struct {
	TimeoutSeconds       int      `yaml:"timeout_seconds"`
	UploadTimeoutSeconds int      `yaml:"upload_timeout_seconds"`
	TempDir              string   `yaml:"temp_dir"`
	RetentionHours       int      `yaml:"retention_hours"`
	SweepIntervalMinutes int      `yaml:"sweep_interval_minutes"`
	AudioExtensions      []string `yaml:"audio_extensions"`
	AuthToken            string   `yaml:"auth_token"`
	AuthHosts            []string `yaml:"auth_hosts"`
}

// LoggingConfig controls logrus output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads path (if it exists), applies defaults and environment
// overrides, and validates the result. A missing file is fine: everything
// can come from the environment.
func Load(path string) (*Config, error) {
	// best effort; a missing .env is not an error
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// fall through to env-only config
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Menu.BackLabel == "" {
		c.Menu.BackLabel = "🔙 رجوع"
	}
	if c.Menu.MainMenuLabel == "" {
		c.Menu.MainMenuLabel = "🏠 القائمة الرئيسية"
	}
	if c.Menu.CacheTTLSeconds <= 0 {
		c.Menu.CacheTTLSeconds = 300
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceJSON
	}
	if c.Source.JSONPath == "" {
		c.Source.JSONPath = "menu_structure.json"
	}
	if c.Download.TimeoutSeconds <= 0 {
		c.Download.TimeoutSeconds = 300
	}
	if c.Download.UploadTimeoutSeconds <= 0 {
		c.Download.UploadTimeoutSeconds = 300
	}
	if c.Download.RetentionHours <= 0 {
		c.Download.RetentionHours = 24
	}
	if c.Download.SweepIntervalMinutes <= 0 {
		c.Download.SweepIntervalMinutes = 60
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = 20
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Token = v
	}
	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		c.Source.SpreadsheetID = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		c.Source.GoogleAPIKey = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Source.SQLitePath = v
	}
	if v := os.Getenv("SUPABASE_KEY"); v != "" {
		c.Download.AuthToken = v
		if len(c.Download.AuthHosts) == 0 {
			c.Download.AuthHosts = []string{"supabase"}
		}
	}
	if v := os.Getenv("ADMIN_IDS"); v != "" {
		var ids []int64
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err == nil {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			c.AdminIDs = ids
		}
	}
}

// Validate checks the fields the bot cannot run without.
func (c *Config) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("telegram token is required (config token or TELEGRAM_TOKEN)")
	}
	switch c.Source.Kind {
	case SourceJSON:
		if c.Source.JSONPath == "" {
			return fmt.Errorf("source.json_path is required for the json source")
		}
	case SourceSQLite:
		if c.Source.SQLitePath == "" {
			return fmt.Errorf("source.sqlite_path is required for the sqlite source")
		}
	case SourceSheets:
		if c.Source.SpreadsheetID == "" {
			return fmt.Errorf("source.spreadsheet_id is required for the sheets source")
		}
		if c.Source.GoogleAPIKey == "" {
			return fmt.Errorf("source.google_api_key is required for the sheets source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Menu.BackLabel == c.Menu.MainMenuLabel {
		return fmt.Errorf("back and main-menu labels must differ")
	}
	return nil
}

// IsAdmin reports whether userID may run privileged commands.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// CacheTTL returns the menu cache TTL.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Menu.CacheTTLSeconds) * time.Second
}

// DownloadTimeout returns the per-download timeout.
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds) * time.Second
}

// UploadTimeout bounds sending a file to the chat backend.
func (c *Config) UploadTimeout() time.Duration {
	return time.Duration(c.Download.UploadTimeoutSeconds) * time.Second
}

// Retention returns how long stale temp files survive before the sweep.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Download.RetentionHours) * time.Hour
}

// SweepInterval returns how often the temp sweep runs.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Download.SweepIntervalMinutes) * time.Minute
}

// SessionIdle returns the session eviction window, 0 for no eviction.
func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.Menu.SessionIdleMinutes) * time.Minute
}

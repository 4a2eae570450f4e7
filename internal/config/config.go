package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API   APIConfig
	Cache CacheConfig
	UI    UIConfig
	Log   LogConfig
}

// APIConfig holds remote API settings.
type APIConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	SecureConnection bool          `mapstructure:"secure_connection"`
}

// CacheConfig holds the offline snapshot settings.
type CacheConfig struct {
	Path    string
	Enabled bool
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Timezone  string
	WeekStart string `mapstructure:"week_start"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
	JSON  bool
	File  string
}

// Keys that may be changed with Set.
var settable = map[string]bool{
	"api.base_url":          true,
	"api.timeout":           true,
	"api.secure_connection": true,
	"cache.path":            true,
	"cache.enabled":         true,
	"ui.timezone":           true,
	"ui.week_start":         true,
	"log.level":             true,
	"log.json":              true,
	"log.file":              true,
}

func defaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8080/api")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.secure_connection", false)
	v.SetDefault("cache.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "budgetbook", "cache.db"))
	v.SetDefault("cache.enabled", true)
	v.SetDefault("ui.timezone", "Asia/Seoul")
	v.SetDefault("ui.week_start", "sunday")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
}

// Path returns the config file location. BUDGETBOOK_CONFIG overrides the default.
func Path() string {
	if p := os.Getenv("BUDGETBOOK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "budgetbook", "config.toml")
}

// newFileViper sees defaults and the config file only.
func newFileViper() *viper.Viper {
	v := viper.New()
	defaults(v)
	v.SetConfigType("toml")
	v.SetConfigFile(Path())
	return v
}

func newViper() *viper.Viper {
	v := newFileViper()
	v.SetEnvPrefix("BUDGETBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from file and env. Env var overrides use prefix BUDGETBOOK_.
func Load() (Config, error) {
	v := newViper()

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	if c.API.BaseURL == "" {
		return Config{}, fmt.Errorf("config: api.base_url is empty")
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = 15 * time.Second
	}
	return c, nil
}

// Location resolves the configured timezone, falling back to local time.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil || c.UI.Timezone == "" {
		return time.Local
	}
	return loc
}

// Save writes the provided config to disk, creating the config directory if needed.
// Tokens never go here; they live in the secrets store.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.secure_connection", cfg.API.SecureConnection)
	v.Set("cache.path", cfg.Cache.Path)
	v.Set("cache.enabled", cfg.Cache.Enabled)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.week_start", cfg.UI.WeekStart)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.json", cfg.Log.JSON)
	v.Set("log.file", cfg.Log.File)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set updates a single key in the config file, leaving the rest of the file
// as it was. BUDGETBOOK_ env overrides are not written back.
func Set(key, value string) (Config, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if !settable[key] {
		// allow the short form used by the security toggle
		if key == "secure_connection" {
			key = "api.secure_connection"
		} else {
			return Config{}, fmt.Errorf("config: unknown key %q", key)
		}
	}
	v := newFileViper()
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	v.Set(key, value)

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("config: invalid value for %s: %w", key, err)
	}
	if err := Save(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Keys lists the settable configuration keys.
func Keys() []string {
	out := make([]string, 0, len(settable))
	for k := range settable {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

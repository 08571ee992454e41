// Package config loads service configuration from YAML, environment, and
// defaults, with hot reload on file change.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/pdfstruct/pdfstruct/internal/headings"
	"github.com/pdfstruct/pdfstruct/internal/layout"
	"github.com/pdfstruct/pdfstruct/internal/remoteparse"
)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager creates a new config manager and loads initial config.
func NewManager(cfgFile string) (*Manager, error) {
	cm := &Manager{
		callbacks: make([]func(*Config), 0),
	}

	if err := cm.initViper(cfgFile); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg

	return cm, nil
}

// initViper sets up viper with defaults and config file.
func (cm *Manager) initViper(cfgFile string) error {
	defaults := DefaultConfig()
	viper.SetDefault("server", defaults.Server)
	viper.SetDefault("headings", defaults.Headings)
	viper.SetDefault("reading_order", defaults.ReadingOrder)
	viper.SetDefault("tables", defaults.Tables)
	viper.SetDefault("layout", defaults.Layout)
	viper.SetDefault("fetch", defaults.Fetch)
	viper.SetDefault("remote", defaults.Remote)

	// Environment variables with PDFSTRUCT_ prefix
	viper.SetEnvPrefix("PDFSTRUCT")
	viper.AutomaticEnv()

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.pdfstruct")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// load parses the current viper state into a Config struct.
func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig enables hot-reloading of configuration.
func (cm *Manager) WatchConfig() {
	viper.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := cm.load()
		if err != nil {
			return
		}

		cm.mu.Lock()
		cm.config = cfg
		callbacks := make([]func(*Config), len(cm.callbacks))
		copy(callbacks, cm.callbacks)
		cm.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	viper.WatchConfig()
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	pattern := regexp.MustCompile(`\$\{([^}]+)\}`)
	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// HeadingThresholds converts the headings section to classifier tunables.
func (c *Config) HeadingThresholds() headings.Thresholds {
	return headings.Thresholds{
		H1Ratio:       c.Headings.H1Ratio,
		H2Ratio:       c.Headings.H2Ratio,
		H3Ratio:       c.Headings.H3Ratio,
		MinConfidence: c.Headings.MinConfidence,
		MaxTitleLen:   c.Headings.MaxTitleLen,
	}
}

// OrderEngine converts the reading-order section to engine tunables.
func (c *Config) OrderEngine() layout.OrderEngine {
	return layout.OrderEngine{
		HeaderMargin: c.ReadingOrder.HeaderMargin,
		FooterMargin: c.ReadingOrder.FooterMargin,
		ColumnEps:    c.ReadingOrder.ColumnEps,
	}
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RemoteParserConfig converts the remote section to a parser config,
// resolving ${ENV_VAR} references in the API key.
func (c *Config) RemoteParserConfig() remoteparse.Config {
	return remoteparse.Config{
		APIKey:  ResolveEnvVars(c.Remote.APIKey),
		Model:   c.Remote.Model,
		BaseURL: c.Remote.BaseURL,
	}
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# pdfstruct configuration
# API keys use ${ENV_VAR} syntax to reference environment variables
# Set these in your shell: export OPENAI_API_KEY=xxx

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}

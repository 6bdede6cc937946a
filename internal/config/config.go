// Package config provides YAML-based configuration loading for Muster.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Muster configuration, loaded from muster.yaml.
type Config struct {
	Owner     string          `yaml:"owner"`
	Database  DatabaseConfig  `yaml:"database"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Sweep     SweepConfig     `yaml:"sweep"`
	Actions   ActionsConfig   `yaml:"actions"`
	Feed      FeedConfig      `yaml:"feed"`
}

// DatabaseConfig selects the durable store: a SQLite file (driver "sqlite")
// or a MySQL server (driver "mysql").
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`     // sqlite only
	Host     string `yaml:"host"`     // mysql only
	Port     int    `yaml:"port"`     // mysql only
	User     string `yaml:"user"`     // mysql only
	Database string `yaml:"database"` // mysql only
}

// DashboardConfig holds settings for the JSON status server.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// SweepConfig controls the background invalidation sweeper.
type SweepConfig struct {
	// Schedule is a standard 5-field cron expression. Defaults to every
	// minute.
	Schedule string `yaml:"schedule"`
}

// ActionsConfig controls audit logging of mutations.
type ActionsConfig struct {
	// Log enables ListAction audit rows. Mutations execute either way.
	Log *bool `yaml:"log"`
}

// FeedConfig configures the campaign feed posters. Empty sections disable
// the corresponding poster.
type FeedConfig struct {
	Discord DiscordConfig `yaml:"discord"`
	Slack   SlackConfig   `yaml:"slack"`
}

// DiscordConfig holds Discord campaign feed credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// SlackConfig holds Slack campaign feed credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LogActions reports whether audit rows should be written. Defaults to true
// when unset.
func (c *Config) LogActions() bool {
	if c.Actions.Log == nil {
		return true
	}
	return *c.Actions.Log
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "muster.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Database == "" && c.Owner != "" {
			c.Database.Database = "muster_" + c.Owner
		}
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8571
	}
	if c.Sweep.Schedule == "" {
		c.Sweep.Schedule = "* * * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Owner == "" {
		errs = append(errs, "owner is required")
	}
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if c.Database.Driver == "mysql" && c.Database.Database == "" {
		errs = append(errs, "database.database is required for mysql")
	}
	if (c.Feed.Discord.BotToken == "") != (c.Feed.Discord.ChannelID == "") {
		errs = append(errs, "feed.discord requires both bot_token and channel_id")
	}
	if (c.Feed.Slack.BotToken == "") != (c.Feed.Slack.ChannelID == "") {
		errs = append(errs, "feed.slack requires both bot_token and channel_id")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/ids"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Buttons  ButtonsConfig  `json:"buttons"`
	Log      LogConfig      `json:"log"`
	Metrics  MetricsConfig  `json:"metrics"`
	Channels ChannelsConfig `json:"channels"`
}

type ButtonsConfig struct {
	Namespace   int64 `env:"PICOBUTTONS_NAMESPACE"    json:"namespace"`
	RowCapacity int   `env:"PICOBUTTONS_ROW_CAPACITY" json:"row_capacity"`
	MaxRows     int   `env:"PICOBUTTONS_MAX_ROWS"     json:"max_rows"`
	// FieldNames renames host members by binding key, e.g. "button.label:text".
	FieldNames map[string]string `env:"PICOBUTTONS_FIELD_NAMES" json:"field_names,omitempty"`
}

type LogConfig struct {
	Level  string `env:"PICOBUTTONS_LOG_LEVEL"  json:"level"`
	Format string `env:"PICOBUTTONS_LOG_FORMAT" json:"format"`
}

type MetricsConfig struct {
	Enabled bool   `env:"PICOBUTTONS_METRICS_ENABLED" json:"enabled"`
	Listen  string `env:"PICOBUTTONS_METRICS_LISTEN"  json:"listen"`
}

type ChannelsConfig struct {
	Discord  DiscordConfig  `json:"discord"`
	Slack    SlackConfig    `json:"slack"`
	Telegram TelegramConfig `json:"telegram"`
}

type DiscordConfig struct {
	Enabled   bool                `env:"PICOBUTTONS_CHANNELS_DISCORD_ENABLED"    json:"enabled"`
	Token     string              `env:"PICOBUTTONS_CHANNELS_DISCORD_TOKEN"      json:"token"`
	AllowFrom FlexibleStringSlice `env:"PICOBUTTONS_CHANNELS_DISCORD_ALLOW_FROM" json:"allow_from"`
}

// SlackConfig connects over Socket Mode, which needs both the bot token and an
// app-level token.
type SlackConfig struct {
	Enabled   bool                `env:"PICOBUTTONS_CHANNELS_SLACK_ENABLED"    json:"enabled"`
	BotToken  string              `env:"PICOBUTTONS_CHANNELS_SLACK_BOT_TOKEN"  json:"bot_token"`
	AppToken  string              `env:"PICOBUTTONS_CHANNELS_SLACK_APP_TOKEN"  json:"app_token"`
	AllowFrom FlexibleStringSlice `env:"PICOBUTTONS_CHANNELS_SLACK_ALLOW_FROM" json:"allow_from"`
}

type TelegramConfig struct {
	Enabled   bool                `env:"PICOBUTTONS_CHANNELS_TELEGRAM_ENABLED"    json:"enabled"`
	Token     string              `env:"PICOBUTTONS_CHANNELS_TELEGRAM_TOKEN"      json:"token"`
	AllowFrom FlexibleStringSlice `env:"PICOBUTTONS_CHANNELS_TELEGRAM_ALLOW_FROM" json:"allow_from"`
}

// Enabled lists the names of the enabled channels.
func (c ChannelsConfig) Enabled() []string {
	var names []string
	if c.Discord.Enabled {
		names = append(names, "discord")
	}
	if c.Slack.Enabled {
		names = append(names, "slack")
	}
	if c.Telegram.Enabled {
		names = append(names, "telegram")
	}
	return names
}

func DefaultConfig() *Config {
	return &Config{
		Buttons: ButtonsConfig{
			Namespace:   ids.DefaultNamespace,
			RowCapacity: buttons.DefaultRowCapacity,
			MaxRows:     buttons.DefaultMaxRows,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Listen: "127.0.0.1:9464",
		},
	}
}

// ButtonOptions maps the buttons section onto buttons.Options.
func (c *Config) ButtonOptions() buttons.Options {
	return buttons.Options{
		Namespace:   c.Buttons.Namespace,
		RowCapacity: c.Buttons.RowCapacity,
		MaxRows:     c.Buttons.MaxRows,
		FieldNames:  c.Buttons.FieldNames,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Buttons.Namespace == 0 {
		errs = append(errs, errors.New("buttons.namespace must be non-zero"))
	}
	if c.Buttons.RowCapacity <= 0 {
		errs = append(errs, errors.New("buttons.row_capacity must be positive"))
	}
	if c.Buttons.MaxRows <= 0 {
		errs = append(errs, errors.New("buttons.max_rows must be positive"))
	}
	if c.Channels.Discord.Enabled && c.Channels.Discord.Token == "" {
		errs = append(errs, errors.New("channels.discord.token is required when discord is enabled"))
	}
	if c.Channels.Slack.Enabled && (c.Channels.Slack.BotToken == "" || c.Channels.Slack.AppToken == "") {
		errs = append(errs, errors.New("channels.slack.bot_token and app_token are required when slack is enabled"))
	}
	if c.Channels.Telegram.Enabled && c.Channels.Telegram.Token == "" {
		errs = append(errs, errors.New("channels.telegram.token is required when telegram is enabled"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads path (a missing file yields defaults), applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

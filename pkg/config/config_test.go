package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"buttons": {"namespace": 9, "row_capacity": 3},
		"channels": {"discord": {"allow_from": [123, "alice"]}}
	}`), 0o600))

	t.Setenv("PICOBUTTONS_MAX_ROWS", "2")
	t.Setenv("PICOBUTTONS_FIELD_NAMES", "button.label:text,row.type:kind")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Buttons.Namespace)
	assert.Equal(t, 3, cfg.Buttons.RowCapacity)
	assert.Equal(t, 2, cfg.Buttons.MaxRows)
	assert.Equal(t, map[string]string{"button.label": "text", "row.type": "kind"}, cfg.Buttons.FieldNames)
	assert.Equal(t, FlexibleStringSlice{"123", "alice"}, cfg.Channels.Discord.AllowFrom)

	opts := cfg.ButtonOptions()
	assert.Equal(t, int64(9), opts.Namespace)
	assert.Equal(t, "text", opts.FieldNames["button.label"])
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"buttons": {"row_capacity": 0}}`), 0o600))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "row_capacity")

	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate_EnabledChannelsNeedTokens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Channels.Discord.Enabled = true
	cfg.Channels.Slack.Enabled = true
	cfg.Channels.Slack.BotToken = "xoxb-1"
	cfg.Channels.Telegram.Enabled = true

	err := cfg.Validate()
	assert.ErrorContains(t, err, "channels.discord.token")
	assert.ErrorContains(t, err, "channels.slack.bot_token and app_token")
	assert.ErrorContains(t, err, "channels.telegram.token")

	cfg.Channels.Discord.Token = "d"
	cfg.Channels.Slack.AppToken = "xapp-1"
	cfg.Channels.Telegram.Token = "123:abc"
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ChannelEnv(t *testing.T) {
	t.Setenv("PICOBUTTONS_CHANNELS_SLACK_ENABLED", "true")
	t.Setenv("PICOBUTTONS_CHANNELS_SLACK_BOT_TOKEN", "xoxb-1")
	t.Setenv("PICOBUTTONS_CHANNELS_SLACK_APP_TOKEN", "xapp-1")
	t.Setenv("PICOBUTTONS_CHANNELS_TELEGRAM_ENABLED", "true")
	t.Setenv("PICOBUTTONS_CHANNELS_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("PICOBUTTONS_CHANNELS_TELEGRAM_ALLOW_FROM", "42,carol")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"slack", "telegram"}, cfg.Channels.Enabled())
	assert.Equal(t, "xapp-1", cfg.Channels.Slack.AppToken)
	assert.Equal(t, FlexibleStringSlice{"42", "carol"}, cfg.Channels.Telegram.AllowFrom)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Buttons.Namespace = 4

	require.NoError(t, SaveConfig(path, cfg))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), loaded.Buttons.Namespace)
}

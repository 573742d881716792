package configcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/picobuttons/cmd/picobuttons/internal"
)

func TestNewConfigCommand(t *testing.T) {
	cmd := NewConfigCommand()
	require.NotNil(t, cmd)

	assert.Equal(t, "config", cmd.Use)
	assert.True(t, cmd.HasExample())
	assert.True(t, cmd.HasSubCommands())
	assert.Nil(t, cmd.RunE)

	initCmd, _, err := cmd.Find([]string{"init"})
	require.NoError(t, err)
	assert.NotNil(t, initCmd.Flags().Lookup("force"))
}

func TestInitThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv(internal.ConfigPathEnv, path)
	t.Setenv("PICOBUTTONS_CHANNELS_DISCORD_TOKEN", "secret-token")
	t.Setenv("PICOBUTTONS_CHANNELS_SLACK_APP_TOKEN", "xapp-secret")
	t.Setenv("PICOBUTTONS_CHANNELS_TELEGRAM_TOKEN", "123:secret")

	var out bytes.Buffer
	cmd := NewConfigCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"init"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), path)

	_, err := os.Stat(path)
	require.NoError(t, err)

	cmd = NewConfigCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init"})
	assert.ErrorContains(t, cmd.Execute(), "already exists")

	out.Reset()
	cmd = NewConfigCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"show"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), `"row_capacity": 5`)
	assert.Contains(t, out.String(), redacted)
	assert.NotContains(t, out.String(), "secret-token")
	assert.NotContains(t, out.String(), "xapp-secret")
	assert.NotContains(t, out.String(), "123:secret")
}

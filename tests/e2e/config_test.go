package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinyland-inc/picobuttons/pkg/buttons"
	"github.com/tinyland-inc/picobuttons/pkg/config"
	"github.com/tinyland-inc/picobuttons/pkg/host"
	"github.com/tinyland-inc/picobuttons/pkg/ids"
)

// TestConfigDrivesButtons saves a config, loads it back with environment
// overrides and checks the resulting API honours it.
func TestConfigDrivesButtons(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := config.DefaultConfig()
	cfg.Buttons.Namespace = 7
	cfg.Buttons.RowCapacity = 1
	require.NoError(t, config.SaveConfig(path, cfg))

	t.Setenv("PICOBUTTONS_MAX_ROWS", "2")

	loaded, err := config.LoadConfig(path)
	require.NoError(t, err)

	c := newClient(t, loaded.ButtonOptions(), nil)
	msg := host.NewMessage("m1", "c1", "Configured")
	c.store.Put(msg)

	noop := func(*host.Message, host.UIContainer) {}
	first, err := c.api.Add(msg, buttons.ButtonData{Label: "A", OnPress: noop})
	require.NoError(t, err)
	_, err = c.api.Add(msg, buttons.ButtonData{Label: "B", OnPress: noop})
	require.NoError(t, err)

	ns, _, err := ids.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, int64(7), ns)
	assert.Len(t, msg.Components(), 2)

	_, err = c.api.Add(msg, buttons.ButtonData{Label: "C", OnPress: noop})
	var capErr *buttons.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.MaxRows)
	assert.Len(t, msg.Buttons(), 2)

	res, err := c.dispatcher.Dispatch(context.Background(), msg, first, nil)
	require.NoError(t, err)
	assert.EqualValues(t, "local", res)
}

// TestConfigFieldNames renames a host member through the environment and
// expects every add to fail without touching the message.
func TestConfigFieldNames(t *testing.T) {
	t.Setenv("PICOBUTTONS_FIELD_NAMES", "button.label:caption")

	loaded, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	c := newClient(t, loaded.ButtonOptions(), nil)
	msg := host.NewMessage("m1", "c1", "Renamed")
	c.store.Put(msg)

	_, err = c.api.Add(msg, buttons.ButtonData{Label: "A", OnPress: func(*host.Message, host.UIContainer) {}})
	require.Error(t, err)
	assert.Empty(t, msg.Components())
	assert.Zero(t, c.api.Registry().Len())
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicobuttonsCommand(t *testing.T) {
	cmd := NewPicobuttonsCommand()
	require.NotNil(t, cmd)

	assert.Equal(t, "picobuttons", cmd.Use)
	assert.True(t, cmd.HasSubCommands())

	for _, name := range []string{"demo", "gateway", "config", "version"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

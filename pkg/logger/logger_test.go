package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("debug"))
	assert.Equal(t, WARN, ParseLevel(" WARNING "))
	assert.Equal(t, ERROR, ParseLevel("error"))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}

func TestErrorCF_JSONCarriesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat("json")
	defer func() {
		SetFormat("text")
		SetOutput(nil)
	}()

	ErrorCF("buttons", "Failed to create button component", map[string]any{"field": "label"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "buttons", line["component"])
	assert.Equal(t, "label", line["field"])
	assert.Equal(t, "Failed to create button component", line["msg"])
}

func TestSetLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	SetLevel(INFO)
	DebugC("test", "hidden")
	assert.Empty(t, buf.String())

	SetLevel(DEBUG)
	defer SetLevel(INFO)
	DebugC("test", "shown")
	assert.Contains(t, buf.String(), "shown")
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{name: "default config", config: nil},
		{name: "json config", config: &Config{Level: "debug", Format: "json"}},
		{name: "console config", config: &Config{Level: "info", Format: "console"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, New(tt.config))
		})
	}
}

func TestLogger_JSONFields(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "info", Format: "json", Output: buf})

	l.With().Str("table", "Order").Int("columns", 2).Logger().Warnf("skipping %s", "rule")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "skipping rule", entry["message"])
	assert.Equal(t, "Order", entry["table"])
	assert.EqualValues(t, 2, entry["columns"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(&Config{Level: "warn", Format: "json", Output: buf})

	l.Debugf("hidden")
	l.Infof("hidden")
	assert.Empty(t, buf.String())
	assert.False(t, l.DebugEnabled())

	l.ErrorErr(errors.New("boom"), "visible")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["error"])
}

func TestSetGlobal(t *testing.T) {
	prev := L()
	defer SetGlobal(prev)

	buf := &bytes.Buffer{}
	SetGlobal(New(&Config{Level: "debug", Format: "json", Output: buf}))
	L().Debugf("hello")
	assert.Contains(t, buf.String(), "hello")

	SetGlobal(nil)
	assert.NotNil(t, L())
}

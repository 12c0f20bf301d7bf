package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, WarnLevel, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("api")

	l.Debug("hidden")
	l.Info("fetched", String("path", "/stats/yearly"), ErrorField(errors.New("boom")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "fetched", entry["msg"])
	assert.Equal(t, "api", entry["logger"])
	assert.Equal(t, "/stats/yearly", entry["path"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLogger_SetLevelIsShared(t *testing.T) {
	var buf bytes.Buffer
	l := DevLogger(&buf, ErrorLevel)
	named := l.Named("race")

	named.Info("quiet")
	assert.Zero(t, buf.Len())

	l.SetLevel(DebugLevel)
	named.Debug("loud")
	assert.Contains(t, buf.String(), "loud")
	assert.Equal(t, DebugLevel, named.Level())
}

func TestResetDefault(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { ResetDefault(saved) })

	var buf bytes.Buffer
	ResetDefault(New(&buf, DebugLevel))
	Warn("careful")
	assert.Contains(t, buf.String(), `"msg":"careful"`)
}

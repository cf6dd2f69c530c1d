package ble

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SetLogOutput(&buf))
	require.NoError(t, SetLogLevel("warn"))
	defer func() {
		_ = SetLogLevel("info")
		_ = SetLogOutput(os.Stderr)
	}()

	l := GetLogger().ChildLogger(map[string]interface{}{"component": "test"})
	l.Info("hidden")
	l.Warnf("shown %d", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")
	assert.Contains(t, buf.String(), "component=test")

	assert.Error(t, SetLogLevel("loud"))
}

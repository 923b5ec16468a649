package core

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging_LevelAndOutput(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		_ = SetLogLevel("info")
	})

	require.NoError(t, SetLogLevel("info"))
	LogDebug("hidden %d", 1)
	LogInfo("packed %s", "Rock_MetallicSmoothness_Packed.png")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "packed Rock_MetallicSmoothness_Packed.png")

	require.NoError(t, SetLogLevel("debug"))
	LogDebug("visible %d", 2)
	assert.Contains(t, buf.String(), "visible 2")

	assert.Error(t, SetLogLevel("chatty"))
}

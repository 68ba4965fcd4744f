package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	require.NoError(t, Setup(Config{Level: "warn", Output: &buf}))

	log.Info().Msg("hidden")
	log.Warn().Str("channel", "gmail").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "inbox", entry["service"])
	assert.Equal(t, "gmail", entry["channel"])
	assert.Equal(t, "warn", entry["level"])
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	assert.Error(t, Setup(Config{Level: "loud"}))
}

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")
	log.Info().Msg("hidden")
	require.Zero(t, buf.Len())

	log.Warn().Str("k", "v").Msg("shown")
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["message"])
	require.Equal(t, "curebird", line["service"])
	require.Equal(t, "v", line["k"])
}

func TestNewWithWriterUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "loud")
	log.Debug().Msg("hidden")
	require.Zero(t, buf.Len())
	log.Info().Msg("shown")
	require.NotZero(t, buf.Len())
}

func TestTemporalLoggerKeyvals(t *testing.T) {
	var buf bytes.Buffer
	tl := NewTemporalLogger(NewWithWriter(&buf, "debug"))
	tl.Info("worker started", "TaskQueue", "curebird-analysis", "dangling")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "worker started", line["message"])
	require.Equal(t, "temporal", line["component"])
	require.Equal(t, "curebird-analysis", line["TaskQueue"])
	require.Equal(t, "(missing)", line["dangling"])
}

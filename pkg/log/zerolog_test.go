package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/batchclock/pkg/batch"
)

func TestZerologAdapter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerologAdapter(&buf, FormatJSON, "debug")
	require.NoError(t, err)

	at := time.Date(2024, 3, 9, 16, 0, 0, 0, time.UTC)
	logger.Info("transition",
		Batch("batch", batch.ID(5_700_000)),
		String("event", "solving_started"),
		Time("at", at),
		Duration("window", batch.SolvingWindow),
		Bool("open", true),
		Err(errors.New("boom")),
	)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "transition", line["message"])
	assert.Equal(t, float64(5_700_000), line["batch"])
	assert.Equal(t, "solving_started", line["event"])
	assert.Equal(t, true, line["open"])
	assert.Equal(t, "boom", line["error"])
	assert.Contains(t, line, "time")
}

func TestZerologAdapter_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerologAdapter(&buf, FormatJSON, "warn")
	require.NoError(t, err)

	logger.Info("dropped")
	assert.Empty(t, buf.String())
	assert.Equal(t, "warn", logger.Level())

	require.NoError(t, logger.SetLevel("debug"))
	logger.Debug("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.Equal(t, "debug", logger.Level())

	assert.Error(t, logger.SetLevel("loud"))
	assert.Equal(t, "debug", logger.Level())
}

func TestZerologAdapter_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewZerologAdapter(&buf, FormatConsole, "info")
	require.NoError(t, err)

	logger.Warn("clock regressed", Uint64("persisted", 10))
	out := buf.String()
	assert.True(t, strings.Contains(out, "clock regressed"), out)
	assert.True(t, strings.Contains(out, "persisted="), out)
}

func TestNewZerologAdapter_InvalidLevel(t *testing.T) {
	_, err := NewZerologAdapter(&bytes.Buffer{}, FormatJSON, "verbose")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

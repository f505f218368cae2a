package render

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBuffer_Ring(t *testing.T) {
	lb := NewLogBuffer(3)
	for i, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Message: msg, Time: time.Unix(int64(i), 0)})
	}

	assert.Equal(t, 3, lb.Len())
	recent := lb.GetRecent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "d", recent[0].Message)
	assert.Equal(t, "b", recent[2].Message)

	assert.Len(t, lb.GetRecent(2), 2)

	lb.Clear()
	assert.Nil(t, lb.GetRecent(5))
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	logger := slog.New(NewLogBufferHandler(lb, level))

	logger.Debug("hidden")
	logger.With("rom", "pong").WithGroup("cpu").Info("loaded", "size", 246)

	recent := lb.GetRecent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, "loaded rom=pong cpu.size=246", recent[0].Message)
	assert.Equal(t, slog.LevelInfo, recent[0].Level)

	level.Set(slog.LevelDebug)
	logger.Debug("visible")
	assert.Equal(t, 2, lb.Len())
}

func TestFormatLogEntry(t *testing.T) {
	entry := LogEntry{
		Time:    time.Date(2024, 1, 1, 13, 4, 5, 0, time.UTC),
		Level:   slog.LevelWarn,
		Message: "slow frame",
	}
	assert.Equal(t, "13:04:05 [WRN] slow frame", FormatLogEntry(entry))
}

func TestGetHalfBlockChar(t *testing.T) {
	assert.Equal(t, '█', GetHalfBlockChar(true, true))
	assert.Equal(t, '▀', GetHalfBlockChar(true, false))
	assert.Equal(t, '▄', GetHalfBlockChar(false, true))
	assert.Equal(t, ' ', GetHalfBlockChar(false, false))
}

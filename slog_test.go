package appgridlog

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSlogTestLogger(t *testing.T, level string) (*slog.Logger, *recordingTransport) {
	t.Helper()
	transport := &recordingTransport{}
	logger, err := New(testOptions(level, transport, nil))
	require.NoError(t, err)
	return NewSlogLogger(logger), transport
}

func TestSlogHandlerLiftsEventFields(t *testing.T) {
	logger, transport := newSlogTestLogger(t, "debug")

	logger.Error("playback failed",
		SlogKeyFacilityCode, 1,
		SlogKeyErrorCode, 2,
		SlogKeyDim1, "player",
		SlogKeyDim4, "06-11",
	)

	require.Equal(t, 1, transport.postCount())
	got := transport.posts[0]
	assert.Equal(t, "http://appgrid.test/application/log/error", got.url)
	assert.Equal(t, 12, got.event.Code)
	assert.Equal(t, "playback failed", got.event.Message)
	assert.Equal(t, "player", got.event.Dimensions.Dim1)
	assert.Equal(t, "06-11", got.event.Dimensions.Dim4)
	assert.Nil(t, got.event.Dimensions.Dim2)
}

func TestSlogHandlerSendsOtherAttrsAsMetadata(t *testing.T) {
	logger, transport := newSlogTestLogger(t, "debug")

	logger.With("session", "abc").WithGroup("req").Info("request", "status", 500, slog.Group("peer", "host", "tv"))

	require.Equal(t, 1, transport.postCount())
	assert.Equal(t,
		`request| Metadata: [{"req.peer":{"host":"tv"},"req.status":500,"session":"abc"}]`,
		transport.posts[0].event.Message)
}

func TestSlogHandlerWithoutAttrsHasNoMetadata(t *testing.T) {
	logger, transport := newSlogTestLogger(t, "debug")

	logger.Warn("plain")

	require.Equal(t, 1, transport.postCount())
	assert.Equal(t, "plain", transport.posts[0].event.Message)
	assert.Equal(t, "http://appgrid.test/application/log/warn", transport.posts[0].url)
}

func TestSlogHandlerNonIntegerCodeIsMetadata(t *testing.T) {
	logger, transport := newSlogTestLogger(t, "debug")

	logger.Info("m", SlogKeyErrorCode, "E42")

	require.Equal(t, 1, transport.postCount())
	assert.Equal(t, 0, transport.posts[0].event.Code)
	assert.Equal(t, `m| Metadata: [{"errorCode":"E42"}]`, transport.posts[0].event.Message)
}

func TestSlogHandlerOutOfRangeCodeIsMetadata(t *testing.T) {
	logger, transport := newSlogTestLogger(t, "debug")

	logger.Info("m", SlogKeyFacilityCode, uint64(math.MaxUint64), SlogKeyErrorCode, 4)

	require.Equal(t, 1, transport.postCount())
	got := transport.posts[0].event
	assert.Equal(t, 4, got.Code)
	assert.Equal(t, `m| Metadata: [{"facilityCode":18446744073709551615}]`, got.Message)
}

func TestSlogHandlerEnabled(t *testing.T) {
	logger, transport := newSlogTestLogger(t, "warn")
	ctx := context.Background()

	assert.False(t, logger.Enabled(ctx, slog.LevelDebug))
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
	assert.True(t, logger.Enabled(ctx, slog.LevelError+4))

	logger.Info("dropped")
	assert.Equal(t, 0, transport.postCount())
}

func TestSeverityFromSlog(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  Severity
	}{
		{slog.LevelDebug - 4, Debug},
		{slog.LevelDebug, Debug},
		{slog.LevelInfo, Info},
		{slog.LevelInfo + 2, Info},
		{slog.LevelWarn, Warn},
		{slog.LevelError, Error},
		{slog.LevelError + 8, Error},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, SeverityFromSlog(tt.level))
		})
	}
}

func TestSlogDebugLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hook := SlogDebugLogger(logger)

	hook("AppGrid: sendEvent request: http://x/application/log/info")
	hook("Sending AppGrid log message:", LogEvent{Code: 1, Message: "m"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `msg="AppGrid: sendEvent request: http://x/application/log/info"`)
	assert.NotContains(t, lines[0], "details")
	assert.Contains(t, lines[1], `msg="Sending AppGrid log message:"`)
	assert.Contains(t, lines[1], `details="{code: 1, message: \"m\"`)
}

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHandler_DispatchesToAllHandlers(t *testing.T) {
	var bufA, bufB bytes.Buffer
	handlerA := slog.NewTextHandler(&bufA, &slog.HandlerOptions{Level: slog.LevelInfo})
	handlerB := slog.NewJSONHandler(&bufB, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewMultiHandler(handlerA, handlerB))
	logger.Info("channel bound", "uid", 2000)

	assert.Contains(t, bufA.String(), "channel bound")
	assert.Contains(t, bufB.String(), `"uid":2000`)
}

func TestMultiHandler_RespectsLevels(t *testing.T) {
	var info, warn bytes.Buffer
	infoHandler := slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo})
	warnHandler := slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn})

	mh := NewMultiHandler(infoHandler, warnHandler)
	require.True(t, mh.Enabled(context.Background(), slog.LevelInfo))

	logger := slog.New(mh)
	logger.Info("info only")

	assert.Contains(t, info.String(), "info only")
	assert.Empty(t, warn.String())
}

func TestRedactingHandler_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})

	logger := slog.New(NewRedactingHandler(handler, nil))
	logger.Info("injecting text", "text", "my secret pin", "strategy", "clipboard")

	out := buf.String()
	assert.NotContains(t, out, "my secret pin")
	assert.Contains(t, out, RedactedValue)
	assert.Contains(t, out, "clipboard")
}

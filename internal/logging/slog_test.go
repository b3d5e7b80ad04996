package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newBufLogger() (*SlogLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return NewSlogLogger(slog.New(h)), &buf
}

func TestSlogLoggerLevels(t *testing.T) {
	ctx := context.Background()
	log, buf := newBufLogger()

	log.Debug(ctx, "dbg", "k", "v")
	log.Info(ctx, "inf")
	log.Warn(ctx, "wrn")
	log.Error(ctx, "err")

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "level=INFO")
	require.Contains(t, out, "level=WARN")
	require.Contains(t, out, "level=ERROR")
	require.Contains(t, out, "k=v")
}

func TestSlogLoggerWith(t *testing.T) {
	ctx := context.Background()
	log, buf := newBufLogger()

	child := log.With("component", "pipeline")
	child.Info(ctx, "one")
	log.Info(ctx, "two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], "component=pipeline")
	require.NotContains(t, lines[1], "component=pipeline")
}

func TestNewNopDiscards(t *testing.T) {
	require.NotPanics(t, func() {
		NewNop().Info(context.Background(), "ignored")
	})
}

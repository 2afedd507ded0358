package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestProfiler_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := NewProfiler(&buf, "1.2.3", logger)
	require.NoError(t, err)

	ctx, span := p.Start(context.Background(), "discovery",
		attribute.Int("files", 12),
	)
	_, child := p.Start(ctx, "module.glimpse")
	EndSpan(child, nil)
	EndSpan(span, nil)

	require.NoError(t, p.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "discovery")
	assert.Contains(t, out, "module.glimpse")
	assert.Contains(t, out, "files")
}

func TestEndSpan_RecordsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p, err := NewProfiler(&buf, "1.2.3", logger)
	require.NoError(t, err)

	_, span := p.Start(context.Background(), "export.xlsx")
	EndSpan(span, errors.New("disk full"))
	require.NoError(t, p.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "export.xlsx")
	assert.Contains(t, out, "disk full")
	assert.Contains(t, out, "Error")
}

func TestNoopProfiler(t *testing.T) {
	p := NoopProfiler()

	_, span := p.Start(context.Background(), "anything")
	EndSpan(span, errors.New("ignored"))

	assert.NoError(t, p.Shutdown(context.Background()))
}

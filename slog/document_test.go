package slog_test

import (
	"bytes"
	"context"
	stdslog "log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/mock"
	"github.com/wikivault/wikivault/slog"
)

func TestLoggingDocumentService_SaveDocument(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := stdslog.New(stdslog.NewTextHandler(&buf, nil))

	saved := false
	inner := &mock.DocumentService{
		SaveDocumentFn: func(_ context.Context, _ *wikivault.Document) error {
			saved = true
			return nil
		},
	}

	s := slog.NewLoggingDocumentService(inner, logger)
	err := s.SaveDocument(context.Background(), &wikivault.Document{
		URL:          "https://wiki.example.com/wiki/Page",
		SourceDomain: "wiki.example.com",
		HTML:         "<html></html>",
	})

	require.NoError(t, err)
	assert.True(t, saved)
	assert.Contains(t, buf.String(), "save document")
	assert.Contains(t, buf.String(), "url=https://wiki.example.com/wiki/Page")
}

func TestLoggingCheckpointService_SaveCheckpoint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelDebug}))

	inner := &mock.CheckpointService{
		SaveCheckpointFn: func(_ context.Context, _ *wikivault.Checkpoint) error {
			return nil
		},
	}

	s := slog.NewLoggingCheckpointService(inner, logger)
	err := s.SaveCheckpoint(context.Background(), &wikivault.Checkpoint{CategoryIndex: 2})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "save checkpoint")
	assert.Contains(t, buf.String(), "category_index=2")
}

// Package slog provides logging decorators for wikivault services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/wikivault/wikivault"
)

// Ensure LoggingDocumentService implements wikivault.DocumentService.
var _ wikivault.DocumentService = (*LoggingDocumentService)(nil)

// LoggingDocumentService wraps a DocumentService with debug logging.
type LoggingDocumentService struct {
	next   wikivault.DocumentService
	logger *slog.Logger
}

// NewLoggingDocumentService creates a new LoggingDocumentService.
func NewLoggingDocumentService(next wikivault.DocumentService, logger *slog.Logger) *LoggingDocumentService {
	return &LoggingDocumentService{next: next, logger: logger}
}

// SaveDocument delegates to the wrapped service and logs the operation.
func (s *LoggingDocumentService) SaveDocument(ctx context.Context, doc *wikivault.Document) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save document",
			"url", doc.URL,
			"source_domain", doc.SourceDomain,
			"bytes", len(doc.HTML),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveDocument(ctx, doc)
}

// FindDocumentByURL delegates to the wrapped service.
func (s *LoggingDocumentService) FindDocumentByURL(ctx context.Context, url, sourceDomain string) (*wikivault.Document, error) {
	return s.next.FindDocumentByURL(ctx, url, sourceDomain)
}

// FindDocuments delegates to the wrapped service.
func (s *LoggingDocumentService) FindDocuments(ctx context.Context, filter wikivault.DocumentFilter) ([]*wikivault.Document, error) {
	return s.next.FindDocuments(ctx, filter)
}

// CountDocuments delegates to the wrapped service.
func (s *LoggingDocumentService) CountDocuments(ctx context.Context) (int, error) {
	return s.next.CountDocuments(ctx)
}

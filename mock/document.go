package mock

import (
	"context"

	"github.com/wikivault/wikivault"
)

var _ wikivault.DocumentService = (*DocumentService)(nil)

// DocumentService is a mock implementation of wikivault.DocumentService.
type DocumentService struct {
	SaveDocumentFn      func(ctx context.Context, doc *wikivault.Document) error
	FindDocumentByURLFn func(ctx context.Context, url, sourceDomain string) (*wikivault.Document, error)
	FindDocumentsFn     func(ctx context.Context, filter wikivault.DocumentFilter) ([]*wikivault.Document, error)
	CountDocumentsFn    func(ctx context.Context) (int, error)
}

func (s *DocumentService) SaveDocument(ctx context.Context, doc *wikivault.Document) error {
	return s.SaveDocumentFn(ctx, doc)
}

func (s *DocumentService) FindDocumentByURL(ctx context.Context, url, sourceDomain string) (*wikivault.Document, error) {
	return s.FindDocumentByURLFn(ctx, url, sourceDomain)
}

func (s *DocumentService) FindDocuments(ctx context.Context, filter wikivault.DocumentFilter) ([]*wikivault.Document, error) {
	return s.FindDocumentsFn(ctx, filter)
}

func (s *DocumentService) CountDocuments(ctx context.Context) (int, error) {
	return s.CountDocumentsFn(ctx)
}

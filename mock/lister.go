package mock

import (
	"context"

	"github.com/wikivault/wikivault"
)

var _ wikivault.PageLister = (*PageLister)(nil)

// PageLister is a mock implementation of wikivault.PageLister.
type PageLister struct {
	ListCategoriesFn      func(ctx context.Context) ([]string, error)
	ListCategoryMembersFn func(ctx context.Context, categoryURL string) ([]string, error)
	RenderPageFn          func(ctx context.Context, articleURL string) (string, error)
}

func (l *PageLister) ListCategories(ctx context.Context) ([]string, error) {
	return l.ListCategoriesFn(ctx)
}

func (l *PageLister) ListCategoryMembers(ctx context.Context, categoryURL string) ([]string, error) {
	return l.ListCategoryMembersFn(ctx, categoryURL)
}

func (l *PageLister) RenderPage(ctx context.Context, articleURL string) (string, error) {
	return l.RenderPageFn(ctx, articleURL)
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wikivault/wikivault"
)

// Compile-time interface verification.
var _ wikivault.DocumentService = (*DocumentService)(nil)

// DocumentService implements wikivault.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

// SaveDocument inserts or overwrites the record for (url, source_domain).
// The document's ID and FetchedAt are assigned here when unset; on conflict
// the existing row keeps its ID and the rest of the record is replaced.
func (s *DocumentService) SaveDocument(ctx context.Context, doc *wikivault.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.FetchedAt.IsZero() {
		doc.FetchedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, url, source_name, source_domain, html, content_hash, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url, source_domain) DO UPDATE SET
			source_name = excluded.source_name,
			html = excluded.html,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, doc.ID, doc.URL, doc.SourceName, doc.SourceDomain, doc.HTML, doc.ContentHash,
		doc.FetchedAt.Format(time.RFC3339))

	return err
}

// FindDocumentByURL retrieves a document by its (url, source_domain) key.
func (s *DocumentService) FindDocumentByURL(ctx context.Context, url, sourceDomain string) (*wikivault.Document, error) {
	var doc wikivault.Document
	var fetchedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, url, source_name, source_domain, html, content_hash, fetched_at
		FROM documents
		WHERE url = ? AND source_domain = ?
	`, url, sourceDomain).Scan(&doc.ID, &doc.URL, &doc.SourceName, &doc.SourceDomain,
		&doc.HTML, &doc.ContentHash, &fetchedAt)

	if err == sql.ErrNoRows {
		return nil, wikivault.Errorf(wikivault.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	doc.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// FindDocuments retrieves documents matching the filter, newest first.
func (s *DocumentService) FindDocuments(ctx context.Context, filter wikivault.DocumentFilter) ([]*wikivault.Document, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, source_name, source_domain, html, content_hash, fetched_at FROM documents WHERE 1=1")

	if filter.SourceDomain != nil {
		query.WriteString(" AND source_domain = ?")
		args = append(args, *filter.SourceDomain)
	}

	query.WriteString(" ORDER BY fetched_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*wikivault.Document
	for rows.Next() {
		var doc wikivault.Document
		var fetchedAt string

		if err := rows.Scan(&doc.ID, &doc.URL, &doc.SourceName, &doc.SourceDomain,
			&doc.HTML, &doc.ContentHash, &fetchedAt); err != nil {
			return nil, err
		}

		doc.FetchedAt, err = parseRFC3339(fetchedAt, "fetched_at")
		if err != nil {
			return nil, err
		}

		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// CountDocuments returns the total number of stored documents.
func (s *DocumentService) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	return count, err
}

// parseRFC3339 parses an RFC3339 formatted timestamp string.
func parseRFC3339(value, fieldName string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// appendPagination appends LIMIT and OFFSET clauses if the values are > 0.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

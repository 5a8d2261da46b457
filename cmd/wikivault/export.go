package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wikivault/wikivault"
	"github.com/wikivault/wikivault/crawl"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	docs, err := deps.Documents.FindDocuments(deps.Ctx, wikivault.DocumentFilter{
		SourceDomain: &deps.Config.SourceDomain,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikivault.ErrorMessage(err))
		return err
	}
	if len(docs) == 0 {
		fmt.Fprintln(deps.Stdout, "No documents to export. Run 'wikivault crawl' first.")
		return nil
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	exported, bytes := 0, 0
	for _, doc := range docs {
		if deps.Ctx.Err() != nil {
			return deps.Ctx.Err()
		}

		markdown, title, err := renderMarkdown(deps, doc)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "  skipped %s: %s\n", doc.URL, wikivault.ErrorMessage(err))
			continue
		}

		path := filepath.Join(c.Dir, exportFilename(doc))
		content := fmt.Sprintf("# %s\n\nSource: %s\nFetched: %s\n\n%s\n",
			title, doc.URL, doc.FetchedAt.Format("2006-01-02"), markdown)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %q: %w", path, err)
		}
		exported++
		bytes += len(content)
	}

	fmt.Fprintf(deps.Stdout, "Exported %d of %d documents (%s) to %s\n",
		exported, len(docs), crawl.FormatBytes(bytes), c.Dir)
	return nil
}

// renderMarkdown extracts the main content from the stored HTML and converts
// it to Markdown. The page title falls back to the URL-derived title when
// extraction yields none.
func renderMarkdown(deps *Dependencies, doc *wikivault.Document) (markdown, title string, err error) {
	result, err := deps.Extractor.Extract(doc.HTML)
	if err != nil {
		return "", "", err
	}

	markdown, err = deps.Converter.Convert(result.ContentHTML)
	if err != nil {
		return "", "", err
	}

	title = result.Title
	if title == "" {
		title = wikivault.URLToTitle(doc.URL)
	}
	return markdown, title, nil
}

// exportFilename derives a safe file name from the document URL.
func exportFilename(doc *wikivault.Document) string {
	name := wikivault.URLToTitle(doc.URL)
	if name == "" {
		name = doc.ID
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name + ".md"
}

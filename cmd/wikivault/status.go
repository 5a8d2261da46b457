package main

import (
	"fmt"

	"github.com/wikivault/wikivault"
)

// Run executes the status command.
func (c *StatusCmd) Run(deps *Dependencies) error {
	count, err := deps.Documents.CountDocuments(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikivault.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Documents stored: %d\n", count)

	cp, err := deps.Checkpoints.LoadCheckpoint(deps.Ctx)
	if wikivault.ErrorCode(err) == wikivault.ENOTFOUND {
		fmt.Fprintln(deps.Stdout, "No checkpoint. The next crawl starts with fresh category discovery.")
		return nil
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikivault.ErrorMessage(err))
		return err
	}

	if cp.CategoryIndex >= len(cp.Categories) {
		fmt.Fprintf(deps.Stdout, "Checkpoint: all %d categories complete. Run 'wikivault reset --force' to recrawl from scratch.\n",
			len(cp.Categories))
	} else {
		fmt.Fprintf(deps.Stdout, "Checkpoint: category %d of %d, %d articles done in current category\n",
			cp.CategoryIndex+1, len(cp.Categories), len(cp.Processed))
	}
	fmt.Fprintf(deps.Stdout, "Totals so far: %d crawled, %d updated, %d unchanged\n",
		cp.PagesCrawled, cp.PagesUpdated, cp.PagesSkipped)
	fmt.Fprintf(deps.Stdout, "Last saved: %s\n", cp.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

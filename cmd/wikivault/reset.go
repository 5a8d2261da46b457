package main

import (
	"fmt"

	"github.com/wikivault/wikivault"
)

// Run executes the reset command.
func (c *ResetCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintln(deps.Stderr, "This discards crawl progress; stored documents are kept. Re-run with --force to confirm.")
		return wikivault.Errorf(wikivault.EINVALID, "reset requires --force")
	}

	if err := deps.Checkpoints.ClearCheckpoint(deps.Ctx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikivault.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, "Checkpoint cleared. The next crawl starts with fresh category discovery.")
	return nil
}

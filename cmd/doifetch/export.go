package main

import (
	"fmt"
	"os"

	"github.com/rafguns/doifetch"
	"github.com/rafguns/doifetch/fs"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
	fts, err := deps.Fulltexts.Fulltexts(deps.Ctx, true)
	if err != nil {
		return fmt.Errorf("failed to read stored full texts: %w", err)
	}

	if err := os.MkdirAll(c.Dir, 0755); err != nil {
		return err
	}

	w := fs.NewWriter(c.Dir)
	var written, skipped int
	for _, ft := range fts {
		path, err := w.Write(ft)
		if doifetch.ErrorCode(err) == doifetch.ECONFLICT {
			// Already exported in a previous run.
			skipped++
			continue
		}
		if err != nil {
			return err
		}
		written++
		fmt.Fprintf(deps.Stderr, "%s -> %s\n", ft.DOI, path)
	}

	fmt.Fprintf(deps.Stdout, "exported %d files, skipped %d\n", written, skipped)
	return nil
}

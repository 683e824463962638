package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rafguns/doifetch/crawl"
)

// Run executes the resolve command.
func (c *ResolveCmd) Run(deps *Dependencies) error {
	dois, err := readDOIs(c.File)
	if err != nil {
		return fmt.Errorf("failed to read DOI file %q: %w", c.File, err)
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "resolving %d DOIs\n", event.Total)
		case crawl.ProgressResolved:
			fmt.Fprintf(deps.Stderr, "[%d/%d] %s -> %s\n",
				event.Completed, event.Total, event.DOI, event.URL)
		case crawl.ProgressNoResult:
			fmt.Fprintf(deps.Stderr, "[%d/%d] %s: no full text found\n",
				event.Completed, event.Total, event.DOI)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "[%d/%d] %s: %s\n",
				event.Completed, event.Total, event.DOI, event.Error)
		}
	}

	res, err := deps.Resolver.ResolveBatch(deps.Ctx, dois, progress)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "resolved %d, no result %d, failed %d, skipped %d\n",
		res.Resolved, res.NoResult, res.Failed, res.Skipped)
	return nil
}

// readDOIs reads one DOI per line, skipping blank lines.
func readDOIs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var dois []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		doi := strings.TrimSpace(scanner.Text())
		if doi == "" {
			continue
		}
		dois = append(dois, doi)
	}
	return dois, scanner.Err()
}

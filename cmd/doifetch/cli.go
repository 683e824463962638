package main

import (
	"context"
	"io"
	"time"

	"github.com/rafguns/doifetch/crawl"
	"github.com/rafguns/doifetch/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	DB        *sqlite.DB
	Fulltexts *sqlite.FulltextService
	Resolver  *crawl.Resolver
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB string `help:"SQLite database path (default: $DOIFETCH_DB or doifetch.db)"`

	Resolve ResolveCmd `cmd:"" help:"Resolve DOIs from a file to full texts"`
	Export  ExportCmd  `cmd:"" help:"Export stored full texts to files"`
}

// ResolveCmd is the "resolve" subcommand.
type ResolveCmd struct {
	File    string        `arg:"" help:"File with one DOI per line"`
	Delays  string        `default:"crawl_delays.txt" help:"Crawl-delay cache file"`
	Email   string        `short:"e" help:"Contact email for the Unpaywall API (enables the unpaywall strategy)"`
	Timeout time.Duration `short:"t" default:"10s" help:"Fetch timeout per request"`
	Verbose bool          `short:"v" help:"Log every request to stderr"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Dir string `arg:"" optional:"" default:"." help:"Output directory"`
}

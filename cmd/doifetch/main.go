package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rafguns/doifetch"
	"github.com/rafguns/doifetch/crawl"
	"github.com/rafguns/doifetch/fs"
	doihttp "github.com/rafguns/doifetch/http"
	doislog "github.com/rafguns/doifetch/slog"
	"github.com/rafguns/doifetch/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by the store.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("doifetch"),
		kong.Description("Resolve DOIs to full-text documents"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'doifetch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DOIFETCH_DB or --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	deps.DB = m.DB
	deps.Fulltexts = sqlite.NewFulltextService(m.DB)

	if cmd == "resolve" {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if cli.Resolve.Verbose {
			logger = slog.New(slog.NewTextHandler(stderr, nil))
		}

		cache, err := fs.OpenDelayCache(cli.Resolve.Delays)
		if err != nil {
			return fmt.Errorf("failed to open crawl-delay cache at %q: %w", cli.Resolve.Delays, err)
		}

		gate := crawl.NewHostGate(cache, crawl.WithGateLogger(logger))

		var fetcher doifetch.Fetcher = doihttp.NewClient(gate,
			doihttp.WithTimeout(cli.Resolve.Timeout),
		)
		if cli.Resolve.Verbose {
			fetcher = doislog.NewLoggingFetcher(fetcher, logger)
		}

		deps.Resolver = &crawl.Resolver{
			Strategies: crawl.DefaultStrategies(fetcher, cli.Resolve.Email),
			Store:      deps.Fulltexts,
			Logger:     logger,
		}
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("DOIFETCH_DB"); path != "" {
		return path
	}
	return "doifetch.db"
}

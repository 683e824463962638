// Package slog provides logging decorators for doifetch interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/rafguns/doifetch"
)

// Ensure LoggingFetcher implements doifetch.Fetcher.
var _ doifetch.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with per-request logging.
type LoggingFetcher struct {
	next   doifetch.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next doifetch.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string, expected doifetch.FileType) *doifetch.LookupResult {
	begin := time.Now()
	res := f.next.Fetch(ctx, url, expected)
	f.logger.Info("fetch",
		"url", url,
		"status", res.StatusCode,
		"type", string(res.FileType),
		"bytes", len(res.Content),
		"err", res.Error,
		"duration", time.Since(begin),
	)
	return res
}

// FetchMetadata delegates to the wrapped fetcher and logs the outcome.
func (f *LoggingFetcher) FetchMetadata(ctx context.Context, url string) *doifetch.LookupResult {
	begin := time.Now()
	res := f.next.FetchMetadata(ctx, url)
	f.logger.Info("fetch metadata",
		"url", url,
		"status", res.StatusCode,
		"err", res.Error,
		"duration", time.Since(begin),
	)
	return res
}

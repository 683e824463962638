package mock

import (
	"context"

	"github.com/rafguns/doifetch"
)

var _ doifetch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of doifetch.Fetcher.
type Fetcher struct {
	FetchFn         func(ctx context.Context, url string, expected doifetch.FileType) *doifetch.LookupResult
	FetchMetadataFn func(ctx context.Context, url string) *doifetch.LookupResult
}

func (f *Fetcher) Fetch(ctx context.Context, url string, expected doifetch.FileType) *doifetch.LookupResult {
	return f.FetchFn(ctx, url, expected)
}

func (f *Fetcher) FetchMetadata(ctx context.Context, url string) *doifetch.LookupResult {
	return f.FetchMetadataFn(ctx, url)
}

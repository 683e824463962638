package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/rafguns/doifetch"
	"github.com/rafguns/doifetch/mock"
	doislog "github.com/rafguns/doifetch/slog"
	"github.com/stretchr/testify/assert"
)

func TestLoggingFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("logs fetch with status and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, expected doifetch.FileType) *doifetch.LookupResult {
				return &doifetch.LookupResult{
					URL:        url,
					StatusCode: 200,
					Content:    []byte("%PDF-1.4"),
					FileType:   doifetch.FileTypePDF,
				}
			},
		}

		fetcher := doislog.NewLoggingFetcher(inner, logger)
		res := fetcher.Fetch(context.Background(), "https://example.com/paper.pdf", doifetch.FileTypePDF)

		assert.True(t, res.OK())
		output := buf.String()
		assert.Contains(t, output, "fetch")
		assert.Contains(t, output, "url=https://example.com/paper.pdf")
		assert.Contains(t, output, "status=200")
		assert.Contains(t, output, "type=pdf")
		assert.Contains(t, output, "bytes=8")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs classification on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string, expected doifetch.FileType) *doifetch.LookupResult {
				return &doifetch.LookupResult{URL: url, Error: doifetch.ErrTimeout}
			},
		}

		fetcher := doislog.NewLoggingFetcher(inner, logger)
		res := fetcher.Fetch(context.Background(), "https://example.com/slow", doifetch.FileTypeAny)

		assert.False(t, res.OK())
		assert.Contains(t, buf.String(), "err=timeout")
	})
}

func TestLoggingFetcher_FetchMetadata(t *testing.T) {
	t.Parallel()

	t.Run("logs metadata fetch", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Fetcher{
			FetchMetadataFn: func(ctx context.Context, url string) *doifetch.LookupResult {
				return &doifetch.LookupResult{URL: url, StatusCode: 200, Content: []byte("[]")}
			},
		}

		fetcher := doislog.NewLoggingFetcher(inner, logger)
		res := fetcher.FetchMetadata(context.Background(), "https://example.com/article")

		assert.True(t, res.OK())
		output := buf.String()
		assert.Contains(t, output, "fetch metadata")
		assert.Contains(t, output, "status=200")
	})
}

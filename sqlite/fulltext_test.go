package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/rafguns/doifetch"
	"github.com/rafguns/doifetch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFulltextService_Insert(t *testing.T) {
	t.Parallel()

	t.Run("stores resolved fulltext", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)
		ctx := context.Background()

		ft := &doifetch.Fulltext{
			DOI:         "10.1234/abc",
			URL:         "https://example.com/abc.pdf",
			StatusCode:  200,
			Content:     []byte("%PDF-1.4 fake"),
			ContentType: "pdf",
			LastChange:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}
		require.NoError(t, svc.Insert(ctx, ft))

		fts, err := svc.Fulltexts(ctx, true)
		require.NoError(t, err)
		require.Len(t, fts, 1)
		assert.Equal(t, "10.1234/abc", fts[0].DOI)
		assert.Equal(t, "https://example.com/abc.pdf", fts[0].URL)
		assert.Equal(t, 200, fts[0].StatusCode)
		assert.Equal(t, []byte("%PDF-1.4 fake"), fts[0].Content)
		assert.Equal(t, "pdf", fts[0].ContentType)
		assert.Equal(t, ft.LastChange, fts[0].LastChange)
	})

	t.Run("sets timestamp when missing", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)
		ctx := context.Background()

		ft := &doifetch.Fulltext{
			DOI: "10.1234/abc",
			URL: "https://example.com/abc.pdf",
		}
		require.NoError(t, svc.Insert(ctx, ft))
		assert.False(t, ft.LastChange.IsZero())
	})

	t.Run("swallows duplicate doi and url", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)
		ctx := context.Background()

		ft := &doifetch.Fulltext{
			DOI:     "10.1234/abc",
			URL:     "https://example.com/abc.pdf",
			Content: []byte("first"),
		}
		require.NoError(t, svc.Insert(ctx, ft))

		dup := &doifetch.Fulltext{
			DOI:     "10.1234/abc",
			URL:     "https://example.com/abc.pdf",
			Content: []byte("second"),
		}
		require.NoError(t, svc.Insert(ctx, dup))

		fts, err := svc.Fulltexts(ctx, true)
		require.NoError(t, err)
		require.Len(t, fts, 1)
		assert.Equal(t, []byte("first"), fts[0].Content)
	})

	t.Run("same doi with different urls keeps both", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)
		ctx := context.Background()

		require.NoError(t, svc.Insert(ctx, &doifetch.Fulltext{
			DOI: "10.1234/abc",
			URL: "https://example.com/abc.pdf",
		}))
		require.NoError(t, svc.Insert(ctx, &doifetch.Fulltext{
			DOI: "10.1234/abc",
			URL: "https://example.com/abc.html",
		}))

		fts, err := svc.Fulltexts(ctx, false)
		require.NoError(t, err)
		assert.Len(t, fts, 2)
	})

	t.Run("returns error for invalid record", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)
		ctx := context.Background()

		err := svc.Insert(ctx, &doifetch.Fulltext{URL: "https://example.com"})
		require.Error(t, err)
		assert.Equal(t, doifetch.EINVALID, doifetch.ErrorCode(err))
	})
}

func TestFulltextService_ExistingDOIs(t *testing.T) {
	t.Parallel()

	t.Run("excludes failed lookups", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)
		ctx := context.Background()

		require.NoError(t, svc.Insert(ctx, &doifetch.Fulltext{
			DOI:     "10.1234/good",
			URL:     "https://example.com/good.pdf",
			Content: []byte("content"),
		}))
		require.NoError(t, svc.Insert(ctx, &doifetch.Fulltext{
			DOI:   "10.1234/bad",
			URL:   "https://example.com/bad",
			Error: "timeout",
		}))

		dois, err := svc.ExistingDOIs(ctx)
		require.NoError(t, err)
		assert.Contains(t, dois, "10.1234/good")
		assert.NotContains(t, dois, "10.1234/bad")
	})

	t.Run("empty database", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)

		dois, err := svc.ExistingDOIs(context.Background())
		require.NoError(t, err)
		assert.Empty(t, dois)
	})
}

func TestFulltextService_Fulltexts(t *testing.T) {
	t.Parallel()

	t.Run("omits content when not requested", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewFulltextService(db)
		ctx := context.Background()

		require.NoError(t, svc.Insert(ctx, &doifetch.Fulltext{
			DOI:     "10.1234/abc",
			URL:     "https://example.com/abc.pdf",
			Content: []byte("large body"),
		}))

		fts, err := svc.Fulltexts(ctx, false)
		require.NoError(t, err)
		require.Len(t, fts, 1)
		assert.Nil(t, fts[0].Content)
	})
}

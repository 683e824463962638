package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rafguns/doifetch"
)

// Compile-time interface verification.
var _ doifetch.FulltextStore = (*FulltextService)(nil)

// FulltextService implements doifetch.FulltextStore using SQLite.
type FulltextService struct {
	db *DB
}

// NewFulltextService creates a new FulltextService.
func NewFulltextService(db *DB) *FulltextService {
	return &FulltextService{db: db}
}

// ExistingDOIs returns the DOIs with a successfully stored full text.
func (s *FulltextService) ExistingDOIs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT doi FROM doi_fulltext WHERE error IS NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dois := make(map[string]struct{})
	for rows.Next() {
		var doi string
		if err := rows.Scan(&doi); err != nil {
			return nil, err
		}
		dois[doi] = struct{}{}
	}
	return dois, rows.Err()
}

// Insert stores a resolution record. An insert for an already-present
// (doi, url) pair is a no-op, not an error: two tasks may legitimately
// discover the same document.
func (s *FulltextService) Insert(ctx context.Context, ft *doifetch.Fulltext) error {
	if err := ft.Validate(); err != nil {
		return err
	}

	if ft.LastChange.IsZero() {
		ft.LastChange = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO doi_fulltext (doi, url, error, status_code, content, content_type, last_change)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (doi, url) DO NOTHING
	`, ft.DOI, ft.URL, nullString(ft.Error), nullInt(ft.StatusCode), ft.Content,
		nullString(ft.ContentType), ft.LastChange.Format(time.RFC3339))

	return err
}

// Fulltexts returns all successfully stored records, without content unless
// withContent is set. Used by the export command.
func (s *FulltextService) Fulltexts(ctx context.Context, withContent bool) ([]*doifetch.Fulltext, error) {
	contentCol := "NULL"
	if withContent {
		contentCol = "content"
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT doi, url, status_code, %s, content_type, last_change
		FROM doi_fulltext
		WHERE error IS NULL
		ORDER BY doi
	`, contentCol))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fts []*doifetch.Fulltext
	for rows.Next() {
		var ft doifetch.Fulltext
		var statusCode sql.NullInt64
		var contentType sql.NullString
		var lastChange string

		if err := rows.Scan(&ft.DOI, &ft.URL, &statusCode, &ft.Content, &contentType, &lastChange); err != nil {
			return nil, err
		}

		ft.StatusCode = int(statusCode.Int64)
		ft.ContentType = contentType.String
		ft.LastChange, err = time.Parse(time.RFC3339, lastChange)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_change: %w", err)
		}
		fts = append(fts, &ft)
	}
	return fts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

package doifetch

import (
	"context"
	"time"
)

// Fulltext is one persisted resolution outcome, keyed by (DOI, URL).
// Records are never mutated after insertion.
type Fulltext struct {
	DOI string
	URL string

	// Error is the error classification of the terminal fetch, empty when
	// the content is genuine full text.
	Error string

	// StatusCode is the HTTP status code of the terminal fetch, 0 if none.
	StatusCode int

	// Content is the fetched document body.
	Content []byte

	// ContentType is the classified file kind of Content (e.g. "pdf").
	ContentType string

	// LastChange is when the record was created.
	LastChange time.Time
}

// Validate returns an error if the record contains invalid fields.
func (f *Fulltext) Validate() error {
	if f.DOI == "" {
		return Errorf(EINVALID, "fulltext DOI required")
	}
	if f.URL == "" {
		return Errorf(EINVALID, "fulltext URL required")
	}
	return nil
}

// FulltextStore persists resolution outcomes. The store is the one external
// collaborator shared by all concurrent resolution tasks; implementations
// must accept an insert for an already-present (DOI, URL) pair as a no-op.
type FulltextStore interface {
	// ExistingDOIs returns the DOIs already resolved successfully, so a
	// re-run can skip them.
	ExistingDOIs(ctx context.Context) (map[string]struct{}, error)

	// Insert stores a record. A duplicate (DOI, URL) key is swallowed,
	// not returned as an error.
	Insert(ctx context.Context, ft *Fulltext) error
}

package mock

import (
	"context"

	"github.com/rafguns/doifetch"
)

var _ doifetch.FulltextStore = (*FulltextStore)(nil)

// FulltextStore is a mock implementation of doifetch.FulltextStore.
type FulltextStore struct {
	ExistingDOIsFn func(ctx context.Context) (map[string]struct{}, error)
	InsertFn       func(ctx context.Context, ft *doifetch.Fulltext) error
}

func (s *FulltextStore) ExistingDOIs(ctx context.Context) (map[string]struct{}, error) {
	return s.ExistingDOIsFn(ctx)
}

func (s *FulltextStore) Insert(ctx context.Context, ft *doifetch.Fulltext) error {
	return s.InsertFn(ctx, ft)
}

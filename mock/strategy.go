package mock

import (
	"context"

	"github.com/rafguns/doifetch"
)

var _ doifetch.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of doifetch.Strategy.
type Strategy struct {
	StrategyName string
	ResolveFn    func(ctx context.Context, doi string) (*doifetch.Fulltext, error)
}

func (s *Strategy) Name() string {
	return s.StrategyName
}

func (s *Strategy) Resolve(ctx context.Context, doi string) (*doifetch.Fulltext, error) {
	return s.ResolveFn(ctx, doi)
}

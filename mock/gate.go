package mock

import (
	"context"

	"github.com/rafguns/doifetch"
)

var _ doifetch.Gate = (*Gate)(nil)

// Gate is a mock implementation of doifetch.Gate. The zero value admits
// every request immediately.
type Gate struct {
	AcquireFn func(ctx context.Context, scheme, host string) (func(), error)
}

func (g *Gate) Acquire(ctx context.Context, scheme, host string) (func(), error) {
	if g.AcquireFn == nil {
		return func() {}, nil
	}
	return g.AcquireFn(ctx, scheme, host)
}

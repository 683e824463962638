package mock

import (
	"sync"

	"github.com/rafguns/doifetch"
)

var _ doifetch.DelayCache = (*DelayCache)(nil)

// DelayCache is an in-memory implementation of doifetch.DelayCache for tests.
type DelayCache struct {
	mu     sync.Mutex
	delays map[string]int
}

// NewDelayCache returns a DelayCache seeded with the given delays.
func NewDelayCache(seed map[string]int) *DelayCache {
	delays := make(map[string]int, len(seed))
	for host, d := range seed {
		delays[host] = d
	}
	return &DelayCache{delays: delays}
}

func (c *DelayCache) Delay(host string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.delays[host]
	return d, ok
}

func (c *DelayCache) SetDelay(host string, seconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delays[host] = seconds
	return nil
}

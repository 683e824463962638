// Package fs provides file-based persistence: a crawl-delay cache and a
// deduplicating full-text writer.
package fs

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rafguns/doifetch"
)

// Ensure DelayCache implements doifetch.DelayCache at compile time.
var _ doifetch.DelayCache = (*DelayCache)(nil)

// DelayCache is a file-backed cache of per-host crawl delays. The file holds
// one host per line, host and delay separated by whitespace. New entries are
// appended; the file is never rewritten.
type DelayCache struct {
	path string

	mu     sync.Mutex
	delays map[string]int
}

// OpenDelayCache reads the cache file at path, creating it if missing.
func OpenDelayCache(path string) (*DelayCache, error) {
	c := &DelayCache{
		path:   path,
		delays: make(map[string]int),
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		created, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		return c, created.Close()
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		delay, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		c.delays[fields[0]] = delay
	}
	return c, scanner.Err()
}

// Delay returns the cached crawl delay in seconds for host.
func (c *DelayCache) Delay(host string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delay, ok := c.delays[host]
	return delay, ok
}

// SetDelay records the crawl delay for host, appending it to the cache file.
func (c *DelayCache) SetDelay(host string, delay int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "%s\t%d\n", host, delay); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	c.delays[host] = delay
	return nil
}

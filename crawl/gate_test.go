package crawl_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rafguns/doifetch"
	"github.com/rafguns/doifetch/crawl"
	"github.com/rafguns/doifetch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostGate(t *testing.T) {
	t.Parallel()

	t.Run("implements doifetch.Gate interface", func(t *testing.T) {
		t.Parallel()
		var _ doifetch.Gate = crawl.NewHostGate(mock.NewDelayCache(nil))
	})

	t.Run("first request to cached host is immediate", func(t *testing.T) {
		t.Parallel()

		gate := crawl.NewHostGate(mock.NewDelayCache(map[string]int{"example.com": 1}))

		start := time.Now()
		release, err := gate.Acquire(context.Background(), "https", "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		release()
		assert.Less(t, elapsed, 500*time.Millisecond, "first request should be immediate")
	})

	t.Run("consecutive request starts spaced by crawl delay", func(t *testing.T) {
		t.Parallel()

		gate := crawl.NewHostGate(mock.NewDelayCache(map[string]int{"example.com": 1}))

		release, err := gate.Acquire(context.Background(), "https", "example.com")
		require.NoError(t, err)
		release()

		start := time.Now()
		release, err = gate.Acquire(context.Background(), "https", "example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		release()
		assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond, "should wait for crawl delay")
	})

	t.Run("different hosts proceed in parallel", func(t *testing.T) {
		t.Parallel()

		gate := crawl.NewHostGate(mock.NewDelayCache(map[string]int{
			"a.example.com": 1,
			"b.example.com": 1,
		}))

		release, err := gate.Acquire(context.Background(), "https", "a.example.com")
		require.NoError(t, err)
		defer release()

		// With a.example.com still held, b.example.com is admitted at once.
		start := time.Now()
		releaseB, err := gate.Acquire(context.Background(), "https", "b.example.com")
		elapsed := time.Since(start)

		require.NoError(t, err)
		releaseB()
		assert.Less(t, elapsed, 500*time.Millisecond, "different host should not wait")
	})

	t.Run("next waiter admitted only after release", func(t *testing.T) {
		t.Parallel()

		gate := crawl.NewHostGate(mock.NewDelayCache(map[string]int{"example.com": 0}))

		release, err := gate.Acquire(context.Background(), "https", "example.com")
		require.NoError(t, err)

		acquired := make(chan struct{})
		go func() {
			r, err := gate.Acquire(context.Background(), "https", "example.com")
			if err == nil {
				r()
			}
			close(acquired)
		}()

		select {
		case <-acquired:
			t.Fatal("second acquire should block while first is held")
		case <-time.After(100 * time.Millisecond):
		}

		release()

		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("second acquire should proceed after release")
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		gate := crawl.NewHostGate(mock.NewDelayCache(map[string]int{"example.com": 10}))

		release, err := gate.Acquire(context.Background(), "https", "example.com")
		require.NoError(t, err)
		release()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err = gate.Acquire(ctx, "https", "example.com")
		assert.Error(t, err)
	})
}

func TestHostGate_DelayDiscovery(t *testing.T) {
	t.Parallel()

	t.Run("reads crawl delay from robots txt", func(t *testing.T) {
		t.Parallel()

		var robotsHits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/robots.txt", r.URL.Path)
			robotsHits.Add(1)
			fmt.Fprint(w, "User-agent: *\nCrawl-delay: 2\n")
		}))
		defer srv.Close()

		host := serverHost(t, srv)
		cache := mock.NewDelayCache(nil)
		gate := crawl.NewHostGate(cache)

		release, err := gate.Acquire(context.Background(), "http", host)
		require.NoError(t, err)
		release()

		delay, ok := cache.Delay(host)
		require.True(t, ok)
		assert.Equal(t, 2, delay)
		assert.Equal(t, int64(1), robotsHits.Load())
	})

	t.Run("discovery happens once under concurrent first access", func(t *testing.T) {
		t.Parallel()

		var robotsHits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			robotsHits.Add(1)
			fmt.Fprint(w, "User-agent: *\nCrawl-delay: 1\n")
		}))
		defer srv.Close()

		host := serverHost(t, srv)
		gate := crawl.NewHostGate(mock.NewDelayCache(nil))

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := gate.Acquire(context.Background(), "http", host)
				if err == nil {
					release()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), robotsHits.Load())
	})

	t.Run("defaults on missing robots txt", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		host := serverHost(t, srv)
		cache := mock.NewDelayCache(nil)
		gate := crawl.NewHostGate(cache)

		release, err := gate.Acquire(context.Background(), "http", host)
		require.NoError(t, err)
		release()

		delay, ok := cache.Delay(host)
		require.True(t, ok)
		assert.Equal(t, crawl.DefaultCrawlDelay, delay)
	})

	t.Run("defaults on unreachable host", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		host := serverHost(t, srv)
		srv.Close()

		cache := mock.NewDelayCache(nil)
		gate := crawl.NewHostGate(cache)

		release, err := gate.Acquire(context.Background(), "http", host)
		require.NoError(t, err)
		release()

		delay, ok := cache.Delay(host)
		require.True(t, ok)
		assert.Equal(t, crawl.DefaultCrawlDelay, delay)
	})

	t.Run("cached delay skips robots fetch", func(t *testing.T) {
		t.Parallel()

		var robotsHits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			robotsHits.Add(1)
		}))
		defer srv.Close()

		host := serverHost(t, srv)
		gate := crawl.NewHostGate(mock.NewDelayCache(map[string]int{host: 1}))

		release, err := gate.Acquire(context.Background(), "http", host)
		require.NoError(t, err)
		release()

		assert.Zero(t, robotsHits.Load())
	})
}

func serverHost(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return u.Host
}

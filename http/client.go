// Package http provides the HTTP-based implementation of doifetch.Fetcher.
// It is the single choke point for outbound requests: every request passes
// through the politeness gate, and every remote failure is converted into a
// LookupResult classification rather than a Go error.
package http

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rafguns/doifetch"
	"github.com/rafguns/doifetch/goquery"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent mimics a desktop browser. Several publishers serve
// different content (or none) to obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"

// MaxRefreshHops bounds how many HTML meta-refresh redirects FetchMetadata
// follows before failing closed. A self-referential refresh page would
// otherwise loop forever.
const MaxRefreshHops = 5

// maxInterimHops bounds how many single-link interim pages Fetch follows.
const maxInterimHops = 3

// Ensure Client implements doifetch.Fetcher at compile time.
var _ doifetch.Fetcher = (*Client)(nil)

// Client retrieves documents over HTTP, gated per host.
type Client struct {
	client    *http.Client
	gate      doifetch.Gate
	timeout   time.Duration
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header for all requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a Client that routes every request through gate.
func NewClient(gate doifetch.Gate, opts ...Option) *Client {
	c := &Client{
		gate:      gate,
		timeout:   DefaultFetchTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// Fetch retrieves rawURL, following HTTP redirects and recording the final
// URL. The response body is classified; when expected is not FileTypeAny and
// the classified kind differs, the result carries the content and classified
// kind with Error set to ErrUnexpectedFileType.
func (c *Client) Fetch(ctx context.Context, rawURL string, expected doifetch.FileType) *doifetch.LookupResult {
	return c.fetch(ctx, rawURL, expected, maxInterimHops)
}

func (c *Client) fetch(ctx context.Context, rawURL string, expected doifetch.FileType, interimHops int) *doifetch.LookupResult {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return &doifetch.LookupResult{URL: rawURL, Error: fmt.Sprintf("%s: %q", doifetch.ErrInvalidURL, rawURL)}
	}

	release, err := c.gate.Acquire(ctx, u.Scheme, u.Host)
	if err != nil {
		return &doifetch.LookupResult{URL: rawURL, Error: classifyTransport(err)}
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &doifetch.LookupResult{URL: rawURL, Error: fmt.Sprintf("%s: %v", doifetch.ErrInvalidURL, err)}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &doifetch.LookupResult{URL: rawURL, Error: classifyTransport(err)}
	}
	defer resp.Body.Close()

	finalURL := resp.Request.URL.String()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &doifetch.LookupResult{
			URL:        finalURL,
			Error:      fmt.Sprintf("%s: %d", doifetch.ErrHTTPStatus, resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &doifetch.LookupResult{URL: finalURL, Error: classifyTransport(err), StatusCode: resp.StatusCode}
	}

	ft := doifetch.Classify(resp.Header.Get("Content-Type"), body)
	res := &doifetch.LookupResult{
		URL:        finalURL,
		StatusCode: resp.StatusCode,
		Content:    body,
		FileType:   ft,
	}

	if expected != doifetch.FileTypeAny && ft != expected {
		// ScienceDirect puts an interim page with a single link in front of
		// the actual PDF; follow only that link.
		if interimHops > 0 && ft == doifetch.FileTypeHTML && strings.Contains(resp.Request.URL.Host, "sciencedirect.com") {
			if links, err := goquery.Links(string(body), finalURL); err == nil && len(links) == 1 {
				return c.fetch(ctx, links[0], expected, interimHops-1)
			}
		}
		res.Error = doifetch.ErrUnexpectedFileType
	}

	return res
}

// FetchMetadata retrieves rawURL, parses it as HTML, and extracts citation
// metadata. A page without metadata but with an HTML meta-refresh redirect
// (used by Elsevier and possibly others) is followed up to MaxRefreshHops.
// On success the result content holds the JSON-encoded metadata pair list.
func (c *Client) FetchMetadata(ctx context.Context, rawURL string) *doifetch.LookupResult {
	return c.fetchMetadata(ctx, rawURL, 0)
}

func (c *Client) fetchMetadata(ctx context.Context, rawURL string, hops int) *doifetch.LookupResult {
	if hops > MaxRefreshHops {
		return &doifetch.LookupResult{URL: rawURL, Error: doifetch.ErrTooManyRedirects}
	}

	res := c.Fetch(ctx, rawURL, doifetch.FileTypeAny)
	if !res.OK() {
		return res
	}
	if res.FileType != doifetch.FileTypeHTML {
		return &doifetch.LookupResult{URL: res.URL, Error: doifetch.ErrNotHTML, StatusCode: res.StatusCode}
	}
	if len(res.Content) == 0 {
		return &doifetch.LookupResult{URL: res.URL, Error: doifetch.ErrUnparseable, StatusCode: res.StatusCode}
	}

	html := string(res.Content)
	pairs, err := goquery.ExtractCitationMeta(html)
	if err != nil {
		return &doifetch.LookupResult{URL: res.URL, Error: doifetch.ErrUnparseable, StatusCode: res.StatusCode}
	}

	if len(pairs) == 0 {
		if target, ok := goquery.ResolveMetaRefresh(html, res.URL); ok {
			return c.fetchMetadata(ctx, target, hops+1)
		}
	}

	content, err := doifetch.EncodeMeta(pairs)
	if err != nil {
		return &doifetch.LookupResult{URL: res.URL, Error: doifetch.ErrUnparseable, StatusCode: res.StatusCode}
	}

	return &doifetch.LookupResult{
		URL:        res.URL,
		StatusCode: res.StatusCode,
		Content:    content,
		FileType:   doifetch.FileTypeHTML,
	}
}

// classifyTransport maps a transport-level failure to its error
// classification: timeout, certificate error, or connection error.
func classifyTransport(err error) string {
	kind := doifetch.ErrConnection

	var netErr net.Error
	var certErr *x509.CertificateInvalidError
	var unknownAuthErr x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = doifetch.ErrTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = doifetch.ErrTimeout
	case errors.As(err, &certErr), errors.As(err, &unknownAuthErr), errors.As(err, &hostnameErr):
		kind = doifetch.ErrCertificate
	case strings.Contains(err.Error(), "tls:"):
		kind = doifetch.ErrCertificate
	}

	return fmt.Sprintf("%s: %v", kind, err)
}

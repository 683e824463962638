package doifetch

import "context"

// Error classifications recorded on a LookupResult. Remote failures are never
// surfaced as Go errors; they are classified here so callers can branch on
// LookupResult.OK and persist the reason. Transport classifications are
// prefixes; the full string includes the underlying cause.
const (
	ErrConnection         = "connection error"
	ErrTimeout            = "timeout"
	ErrCertificate        = "certificate error"
	ErrHTTPStatus         = "HTTP error"
	ErrInvalidURL         = "invalid URL"
	ErrNotHTML            = "not HTML page"
	ErrUnparseable        = "empty or unparseable page"
	ErrTooManyRedirects   = "too many redirects"
	ErrUnexpectedFileType = "unexpected file type"
)

// LookupResult describes the outcome of one fetch attempt. Even when a
// request yields no response at all there is still a LookupResult; the Error
// field carries the classification.
type LookupResult struct {
	// URL is the URL actually reached, after following redirects.
	URL string

	// Error is the error classification, empty on success.
	Error string

	// StatusCode is the HTTP status code, 0 when no response was received.
	StatusCode int

	// Content is the raw response body, nil on transport failure.
	Content []byte

	// FileType is the classified kind of Content.
	FileType FileType
}

// OK reports whether the lookup succeeded. When OK returns true, Content and
// FileType are set and FileType matches what the caller expected.
func (r *LookupResult) OK() bool {
	return r.Error == ""
}

// Fetcher is the single choke point for outbound requests. Implementations
// route every request through a politeness Gate, follow redirects, and
// classify response bodies. Fetch and FetchMetadata never return Go errors
// for remote failures; those are classified on the LookupResult.
type Fetcher interface {
	// Fetch retrieves url. If expected is not FileTypeAny and the classified
	// kind differs, the result still carries the content and classified kind
	// but its Error is set to ErrUnexpectedFileType. Many origins return an
	// HTML "not found" page with status 200, so callers must be able to
	// inspect what actually came back.
	Fetch(ctx context.Context, url string, expected FileType) *LookupResult

	// FetchMetadata retrieves url, parses it as HTML, and extracts citation
	// metadata. When a page has no metadata but carries an HTML meta-refresh
	// redirect, the redirect is followed, up to a fixed hop limit. On success
	// the result content is the JSON-encoded metadata pair list.
	FetchMetadata(ctx context.Context, url string) *LookupResult
}

// Gate serializes and spaces requests per host. Acquire blocks until the
// caller both holds exclusive access for the host and the host's crawl delay
// has elapsed since the previous request start. The returned release func
// must be called once the request has completed; until then no other request
// to the same host may start. Different hosts proceed fully in parallel.
type Gate interface {
	Acquire(ctx context.Context, scheme, host string) (release func(), err error)
}

// DelayCache stores discovered per-host crawl delays, in seconds. Entries
// are set at most once per host and never expire within a run.
type DelayCache interface {
	// Delay returns the cached delay for host.
	Delay(host string) (seconds int, ok bool)

	// SetDelay records the delay for host.
	SetDelay(host string, seconds int) error
}

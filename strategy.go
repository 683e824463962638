package doifetch

import (
	"context"
	"net/url"
	"strings"
)

// Strategy is one self-contained algorithm for locating a full-text document
// given a DOI. Strategies are tried in a fixed order and must not propagate
// transport or parse failures: a failed attempt is reported as (nil, nil).
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Resolve attempts to locate full text for doi. It returns the terminal
	// record on success, (nil, nil) when the strategy definitely yields no
	// result, and an error only for context cancellation or caller bugs.
	Resolve(ctx context.Context, doi string) (*Fulltext, error)
}

// EncodeDOI percent-encodes a DOI for use in a URL path, keeping the "/"
// separators intact.
func EncodeDOI(doi string) string {
	segments := strings.Split(doi, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// DOIURL returns the doi.org resolver URL for a DOI.
func DOIURL(doi string) string {
	return "https://doi.org/" + EncodeDOI(doi)
}

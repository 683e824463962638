package crawl

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/rafguns/doifetch"
)

// fulltext builds a persistable record from a successful lookup.
func fulltext(doi string, res *doifetch.LookupResult) *doifetch.Fulltext {
	return &doifetch.Fulltext{
		DOI:         doi,
		URL:         res.URL,
		StatusCode:  res.StatusCode,
		Content:     res.Content,
		ContentType: string(res.FileType),
		LastChange:  time.Now().UTC(),
	}
}

var _ doifetch.Strategy = (*DirectLink)(nil)

// DirectLink checks whether the DOI resolves directly to a PDF.
type DirectLink struct {
	Fetcher doifetch.Fetcher
}

func (s *DirectLink) Name() string { return "direct_link" }

func (s *DirectLink) Resolve(ctx context.Context, doi string) (*doifetch.Fulltext, error) {
	res := s.Fetcher.Fetch(ctx, doifetch.DOIURL(doi), doifetch.FileTypePDF)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, nil
	}
	return fulltext(doi, res), nil
}

var _ doifetch.Strategy = (*HTMLMeta)(nil)

// HTMLMeta derives a full-text link from the citation metadata in the
// HTML <meta> elements of the DOI's landing page.
type HTMLMeta struct {
	Fetcher doifetch.Fetcher
}

func (s *HTMLMeta) Name() string { return "html_meta" }

func (s *HTMLMeta) Resolve(ctx context.Context, doi string) (*doifetch.Fulltext, error) {
	// Resolve the DOI first so metadata is read from the landing page URL.
	res := s.Fetcher.Fetch(ctx, doifetch.DOIURL(doi), doifetch.FileTypeAny)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if res.StatusCode == 0 {
		return nil, nil
	}

	meta := s.Fetcher.FetchMetadata(ctx, res.URL)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !meta.OK() {
		return nil, nil
	}

	pairs, err := doifetch.DecodeMeta(meta.Content)
	if err != nil {
		return nil, nil
	}

	link, kind, ok := doifetch.FulltextLink(doifetch.GroupMeta(pairs))
	if !ok {
		return nil, nil
	}

	ft := s.Fetcher.Fetch(ctx, link, kind)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ft.OK() {
		return nil, nil
	}
	return fulltext(doi, ft), nil
}

// DefaultTemplates returns the built-in publisher URL templates, keyed by
// landing page host. The {doi} placeholder takes the URL-encoded DOI.
func DefaultTemplates() map[string][]string {
	return map[string][]string{
		"link.springer.com": {
			"https://link.springer.com/content/pdf/{doi}.pdf",
			"https://page-one.springer.com/pdf/preview/{doi}",
		},
		"www.magonlinelibrary.com": {"https://www.magonlinelibrary.com/doi/pdf/{doi}"},
		"onlinelibrary.wiley.com": {
			"https://onlinelibrary.wiley.com/doi/pdf/{doi}",
			"https://onlinelibrary.wiley.com/doi/pdfdirect/{doi}",
		},
		"www.tandfonline.com":     {"https://www.tandfonline.com/doi/pdf/{doi}"},
		"www.worldscientific.com": {"https://www.worldscientific.com/doi/pdf/{doi}"},
		"www.jstor.org":           {"https://www.jstor.org/stable/pdf/{doi}.pdf"},
		"www.emerald.com":         {"https://www.emerald.com/insight/content/doi/{doi}/full/pdf"},
	}
}

var _ doifetch.Strategy = (*URLTemplates)(nil)

// URLTemplates tries known per-publisher PDF URL templates, selected by the
// host the DOI's landing page lives on.
type URLTemplates struct {
	Fetcher doifetch.Fetcher

	// Templates overrides DefaultTemplates when non-nil.
	Templates map[string][]string
}

func (s *URLTemplates) Name() string { return "url_templates" }

func (s *URLTemplates) Resolve(ctx context.Context, doi string) (*doifetch.Fulltext, error) {
	res := s.Fetcher.Fetch(ctx, doifetch.DOIURL(doi), doifetch.FileTypeAny)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	host, err := urlHost(res.URL)
	if err != nil {
		return nil, nil
	}

	templates := s.Templates
	if templates == nil {
		templates = DefaultTemplates()
	}

	for _, tmpl := range templates[host] {
		candidate := strings.ReplaceAll(tmpl, "{doi}", doifetch.EncodeDOI(doi))
		ft := s.Fetcher.Fetch(ctx, candidate, doifetch.FileTypePDF)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if ft.OK() {
			return fulltext(doi, ft), nil
		}
	}
	return nil, nil
}

func urlHost(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return u.Host, nil
}

// DefaultUnpaywallBase is the Unpaywall API endpoint.
const DefaultUnpaywallBase = "https://api.unpaywall.org/v2/"

// unpaywallResponse captures the fields we need from an Unpaywall record.
type unpaywallResponse struct {
	IsOA           bool `json:"is_oa"`
	BestOALocation *struct {
		URL string `json:"url"`
	} `json:"best_oa_location"`
}

var _ doifetch.Strategy = (*Unpaywall)(nil)

// Unpaywall asks the Unpaywall open-access aggregator for the best legal
// free copy of the work. The API requires a contact email; without one the
// strategy yields no result.
type Unpaywall struct {
	Fetcher doifetch.Fetcher

	// Email is the contact address sent with each API request.
	Email string

	// APIBase overrides DefaultUnpaywallBase when non-empty.
	APIBase string
}

func (s *Unpaywall) Name() string { return "unpaywall" }

func (s *Unpaywall) Resolve(ctx context.Context, doi string) (*doifetch.Fulltext, error) {
	if s.Email == "" {
		return nil, nil
	}

	base := s.APIBase
	if base == "" {
		base = DefaultUnpaywallBase
	}

	lookupURL := base + doifetch.EncodeDOI(doi) + "?email=" + url.QueryEscape(s.Email)
	res := s.Fetcher.Fetch(ctx, lookupURL, doifetch.FileTypeJSON)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, nil
	}

	var record unpaywallResponse
	if err := json.Unmarshal(res.Content, &record); err != nil {
		return nil, nil
	}
	if !record.IsOA || record.BestOALocation == nil || record.BestOALocation.URL == "" {
		return nil, nil
	}

	ft := s.Fetcher.Fetch(ctx, record.BestOALocation.URL, doifetch.FileTypePDF)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ft.OK() {
		return nil, nil
	}
	return fulltext(doi, ft), nil
}

// DefaultStrategies returns the resolution strategies in their fixed order:
// direct DOI link, HTML metadata, publisher URL templates, Unpaywall.
func DefaultStrategies(fetcher doifetch.Fetcher, unpaywallEmail string) []doifetch.Strategy {
	return []doifetch.Strategy{
		&DirectLink{Fetcher: fetcher},
		&HTMLMeta{Fetcher: fetcher},
		&URLTemplates{Fetcher: fetcher},
		&Unpaywall{Fetcher: fetcher, Email: unpaywallEmail},
	}
}

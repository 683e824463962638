// Package goquery extracts citation metadata and HTML-level redirects from
// publisher pages using the goquery HTML parser.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rafguns/doifetch"
)

// citationMetaSelector matches Google Scholar and Dublin Core <meta> elements.
const citationMetaSelector = `meta[name^="citation_"], meta[name^="dc."], meta[name^="DC."]`

// Regexes for the URL inside a meta-refresh content attribute
// (e.g. `content="5; url=/foo"`). Separate variants with and without
// quote marks.
var (
	refreshURLQuoted   = regexp.MustCompile(`(?i)url\s*=\s*['"](.*?)['"]`)
	refreshURLUnquoted = regexp.MustCompile(`(?i)url\s*=\s*(.+)`)
)

// ExtractCitationMeta returns all Google Scholar and Dublin Core meta info
// as an ordered (name, content) pair list. Duplicate names are preserved;
// fields like citation_author carry multiple values.
func ExtractCitationMeta(html string) ([]doifetch.MetaPair, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, doifetch.Errorf(doifetch.EINVALID, "failed to parse HTML: %v", err)
	}

	var pairs []doifetch.MetaPair
	doc.Find(citationMetaSelector).Each(func(_ int, sel *goquery.Selection) {
		name, _ := sel.Attr("name")
		content, exists := sel.Attr("content")
		if !exists {
			return
		}
		pairs = append(pairs, doifetch.MetaPair{Name: name, Content: content})
	})
	return pairs, nil
}

// ResolveMetaRefresh locates the first <meta http-equiv="refresh"> element
// and returns its target URL resolved against baseURL. Both the http-equiv
// value and the url= key are matched case-insensitively. ok is false when no
// such element exists or its content attribute carries no parseable URL.
func ResolveMetaRefresh(html, baseURL string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	var content string
	var found bool
	doc.Find("meta").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		equiv, _ := sel.Attr("http-equiv")
		if !strings.EqualFold(equiv, "refresh") {
			return true
		}
		content, _ = sel.Attr("content")
		found = true
		return false
	})
	if !found {
		return "", false
	}

	var target string
	if m := refreshURLQuoted.FindStringSubmatch(content); m != nil {
		target = m[1]
	} else if m := refreshURLUnquoted.FindStringSubmatch(content); m != nil {
		target = strings.TrimSpace(m[1])
	}
	if target == "" {
		return "", false
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", false
	}
	ref, err := url.Parse(target)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// Links returns the href targets of all anchors in the document, resolved
// against baseURL. Used to follow single-link interim pages that some
// publishers put in front of the actual document.
func Links(html, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, doifetch.Errorf(doifetch.EINVALID, "failed to parse HTML: %v", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, doifetch.Errorf(doifetch.EINVALID, "invalid base URL: %v", err)
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		links = append(links, base.ResolveReference(ref).String())
	})
	return links, nil
}

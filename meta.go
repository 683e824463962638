package doifetch

import (
	"encoding/json"
	"strings"
)

// MetaPair is one (name, content) pair from an HTML <meta> element.
// It serializes as a two-element JSON array, so an encoded pair list looks
// like [["citation_doi","10.1/x"], ...].
type MetaPair struct {
	Name    string
	Content string
}

// MarshalJSON implements json.Marshaler.
func (p MetaPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Name, p.Content})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *MetaPair) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	p.Name, p.Content = pair[0], pair[1]
	return nil
}

// EncodeMeta serializes metadata pairs for storage in a LookupResult.
func EncodeMeta(pairs []MetaPair) ([]byte, error) {
	if pairs == nil {
		pairs = []MetaPair{}
	}
	return json.Marshal(pairs)
}

// DecodeMeta deserializes metadata pairs encoded by EncodeMeta.
func DecodeMeta(data []byte) ([]MetaPair, error) {
	var pairs []MetaPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, Errorf(EINVALID, "invalid metadata encoding: %v", err)
	}
	return pairs, nil
}

// MetaFields groups metadata pairs by name. Fields like citation_author
// legitimately carry multiple values.
type MetaFields map[string][]string

// GroupMeta builds a MetaFields multimap from an ordered pair list,
// preserving value order per field.
func GroupMeta(pairs []MetaPair) MetaFields {
	fields := make(MetaFields, len(pairs))
	for _, p := range pairs {
		fields[p.Name] = append(fields[p.Name], p.Content)
	}
	return fields
}

// fulltextMetaFields are the <meta> fields that point at full-text documents,
// in priority order. citation_fulltext_html_url is deliberately absent:
// Springer uses it for landing pages rather than proper full-text documents.
var fulltextMetaFields = []struct {
	Field string
	Kind  FileType
}{
	{"citation_pdf_url", FileTypePDF},
	{"citation_xml_url", FileTypeXML},
	{"citation_full_html_url", FileTypeHTML},
}

// FulltextLink returns the first non-blank full-text URL in the metadata,
// together with its expected file type. ok is false when no recognized field
// carries a usable URL.
func FulltextLink(fields MetaFields) (url string, kind FileType, ok bool) {
	for _, f := range fulltextMetaFields {
		for _, u := range fields[f.Field] {
			if strings.TrimSpace(u) == "" {
				continue
			}
			return u, f.Kind, true
		}
	}
	return "", FileTypeAny, false
}

package doifetch

import (
	"bytes"
	"strings"
)

// FileType identifies the basic kind of a fetched document.
type FileType string

// Known file types. FileTypeAny means "no expectation" when passed to a
// Fetcher; Classify never returns it.
const (
	FileTypeAny     FileType = ""
	FileTypePDF     FileType = "pdf"
	FileTypeXML     FileType = "xml"
	FileTypeHTML    FileType = "html"
	FileTypeTxt     FileType = "txt"
	FileTypeEPUB    FileType = "epub"
	FileTypeJSON    FileType = "json"
	FileTypePNG     FileType = "png"
	FileTypeUnknown FileType = "unknown"
)

// mediaTypes maps declared media types to file types.
var mediaTypes = map[string]FileType{
	"application/pdf":      FileTypePDF,
	"application/xml":      FileTypeXML,
	"text/xml":             FileTypeXML,
	"text/html":            FileTypeHTML,
	"text/plain":           FileTypeTxt,
	"application/epub+zip": FileTypeEPUB,
	"application/json":     FileTypeJSON,
	"image/png":            FileTypePNG,
}

// Classify maps a declared media type and raw body bytes to a FileType.
// Parameters after ";" in the media type are ignored. When the media type is
// missing or unrecognized, the body prefix is sniffed: a %PDF magic marks a
// PDF, a leading <article element marks XML. Never fails; unrecognizable
// input degrades to FileTypeUnknown.
func Classify(mediaType string, body []byte) FileType {
	mt, _, _ := strings.Cut(mediaType, ";")
	mt = strings.TrimSpace(strings.ToLower(mt))
	if ft, ok := mediaTypes[mt]; ok {
		return ft
	}

	if bytes.HasPrefix(body, []byte("%PDF")) {
		return FileTypePDF
	}
	if bytes.HasPrefix(body, []byte("<article")) {
		return FileTypeXML
	}
	return FileTypeUnknown
}

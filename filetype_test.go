package doifetch_test

import (
	"testing"

	"github.com/rafguns/doifetch"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mediaType string
		body      []byte
		want      doifetch.FileType
	}{
		{"pdf media type", "application/pdf", nil, doifetch.FileTypePDF},
		{"media type parameters ignored", "text/html; charset=utf-8", nil, doifetch.FileTypeHTML},
		{"xml media type", "application/xml", nil, doifetch.FileTypeXML},
		{"text xml media type", "text/xml", nil, doifetch.FileTypeXML},
		{"plain text", "text/plain", nil, doifetch.FileTypeTxt},
		{"epub", "application/epub+zip", nil, doifetch.FileTypeEPUB},
		{"json", "application/json", nil, doifetch.FileTypeJSON},
		{"png", "image/png", nil, doifetch.FileTypePNG},
		{"missing type sniffs pdf magic", "", []byte("%PDF-1.4 rest of file"), doifetch.FileTypePDF},
		{"missing type sniffs article element", "", []byte("<article>text</article>"), doifetch.FileTypeXML},
		{"unknown type sniffs body", "bogus/type", []byte("random"), doifetch.FileTypeUnknown},
		{"unknown type with pdf body", "bogus/type", []byte("%PDF-1.7"), doifetch.FileTypePDF},
		{"nothing to go on", "", nil, doifetch.FileTypeUnknown},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, doifetch.Classify(tt.mediaType, tt.body))
		})
	}
}

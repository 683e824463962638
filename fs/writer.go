package fs

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/rafguns/doifetch"
)

var doiSlugger = strings.NewReplacer("/", "-", ":", "-")

// FileName converts a DOI to a safe file base name.
// Example: 10.1234/ab:cd → 10.1234-ab-cd
func FileName(doi string) string {
	return doiSlugger.Replace(doi)
}

// Writer exports full texts to a directory, one file per record. Names
// collide when one DOI resolved to several documents; colliding names get a
// letter suffix unless the contents are identical.
type Writer struct {
	dir string
}

// NewWriter creates a Writer that writes to dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write saves the full text of ft and returns the path written to. If a file
// with the same name and identical contents already exists, Write returns an
// ECONFLICT error and writes nothing.
func (w *Writer) Write(ft *doifetch.Fulltext) (string, error) {
	if err := ft.Validate(); err != nil {
		return "", err
	}

	ext := ft.ContentType
	if ext == "" {
		ext = string(doifetch.Classify("", ft.Content))
	}

	path, err := w.destination(FileName(ft.DOI), ext, ft.Content)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, ft.Content, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// destination picks the first free file name: base.ext, then basea.ext,
// baseb.ext and so on. A name taken by a file with identical contents is an
// ECONFLICT.
func (w *Writer) destination(base, ext string, content []byte) (string, error) {
	for suffix := ""; ; suffix = nextSuffix(suffix) {
		path := filepath.Join(w.dir, base+suffix+"."+ext)

		existing, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return path, nil
		}
		if err != nil {
			return "", err
		}

		if xxhash.Sum64(existing) == xxhash.Sum64(content) {
			return "", doifetch.Errorf(doifetch.ECONFLICT, "file %s has same contents", path)
		}
	}
}

func nextSuffix(suffix string) string {
	if suffix == "" {
		return "a"
	}
	return string(suffix[0] + 1)
}

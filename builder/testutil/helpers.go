package testutil

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/afero"
)

// NewSite returns an in-memory content tree seeded with files (path to
// contents) and a separate empty output filesystem.
func NewSite(t testing.TB, files map[string]string) (src, dst afero.Fs) {
	t.Helper()
	src = afero.NewMemMapFs()
	for name, data := range files {
		if err := src.MkdirAll(filepath.Dir(name), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := afero.WriteFile(src, name, []byte(data), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return src, afero.NewMemMapFs()
}

// AssertFileExists fails the test unless every path exists in fs.
func AssertFileExists(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if ok, err := afero.Exists(fs, p); err != nil || !ok {
			t.Errorf("expected %s to exist (err=%v)", p, err)
		}
	}
}

// AssertFileNotExists fails the test if any path exists in fs.
func AssertFileNotExists(t *testing.T, fs afero.Fs, paths ...string) {
	t.Helper()
	for _, p := range paths {
		if ok, _ := afero.Exists(fs, p); ok {
			t.Errorf("expected %s to be absent", p)
		}
	}
}

// ParseHTML parses s for goquery assertions.
func ParseHTML(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc
}

// ReadHTML parses a page written to fs.
func ReadHTML(t *testing.T, fs afero.Fs, path string) *goquery.Document {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return ParseHTML(t, string(data))
}

// Attrs collects attr from every element matching selector, in document
// order. Elements without the attribute are skipped.
func Attrs(doc *goquery.Document, selector, attr string) []string {
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			out = append(out, v)
		}
	})
	return out
}

package utils

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/afero"
)

func testStatic() fstest.MapFS {
	return fstest.MapFS{
		"css/theme.css": {Data: []byte("body {\n  color: red;\n}\n")},
		"js/toc.js":     {Data: []byte("const answer = 40 + 2;\nconsole.log(answer);\n")},
		"img/logo.svg":  {Data: []byte("<svg></svg>")},
	}
}

func TestBuildAssetsMinified(t *testing.T) {
	dest := afero.NewMemMapFs()
	var written []string

	assets, err := BuildAssets(testStatic(), dest, "public", true, func(p string) {
		written = append(written, p)
	})
	if err != nil {
		t.Fatalf("BuildAssets() error = %v", err)
	}
	if len(written) != 3 {
		t.Errorf("written = %v, want 3 files", written)
	}

	css := assets["/static/css/theme.css"]
	if css == "/static/css/theme.css" || !strings.HasSuffix(css, ".css") {
		t.Errorf("css not fingerprinted: %q", css)
	}
	data, err := afero.ReadFile(dest, "public"+css)
	if err != nil {
		t.Fatalf("read %s: %v", css, err)
	}
	if strings.Contains(string(data), "\n  ") {
		t.Errorf("css not minified: %q", data)
	}

	if got := assets["/static/img/logo.svg"]; got != "/static/img/logo.svg" {
		t.Errorf("svg path = %q, want unchanged", got)
	}
}

func TestBuildAssetsPlain(t *testing.T) {
	dest := afero.NewMemMapFs()
	assets, err := BuildAssets(testStatic(), dest, "public", false, nil)
	if err != nil {
		t.Fatalf("BuildAssets() error = %v", err)
	}
	if got := assets["/static/js/toc.js"]; got != "/static/js/toc.js" {
		t.Errorf("js path = %q", got)
	}
	if ok, _ := afero.Exists(dest, "public/static/js/toc.js"); !ok {
		t.Error("js not written")
	}
}

func TestBuildAssetsSyntaxError(t *testing.T) {
	src := fstest.MapFS{"js/bad.js": {Data: []byte("const = ;")}}
	if _, err := BuildAssets(src, afero.NewMemMapFs(), "public", true, nil); err == nil {
		t.Error("BuildAssets() error = nil, want esbuild failure")
	}
}

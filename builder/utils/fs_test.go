package utils

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

func TestSafeJoin(t *testing.T) {
	root := filepath.FromSlash("/srv/public")
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"/blog/post/", filepath.FromSlash("/srv/public/blog/post"), false},
		{"/../etc/passwd", filepath.FromSlash("/srv/public/etc/passwd"), false},
		{"static/css/x.css", filepath.FromSlash("/srv/public/static/css/x.css"), false},
	}
	for _, tt := range tests {
		got, err := SafeJoin(root, tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("SafeJoin(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("SafeJoin(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFileVFS(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := WriteFileVFS(fs, "public/a/b/index.html", []byte("ok")); err != nil {
		t.Fatalf("WriteFileVFS() error = %v", err)
	}
	data, err := afero.ReadFile(fs, "public/a/b/index.html")
	if err != nil || string(data) != "ok" {
		t.Errorf("read back %q, %v", data, err)
	}
}

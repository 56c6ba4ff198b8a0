package server

import (
	"bufio"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeSite(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"index.html":                    "<html><body>home</body></html>",
		"404.html":                      "<html><body>missing page</body></html>",
		"blog/post/index.html":          "<html><body>" + strings.Repeat("article ", 400) + "</body></html>",
		"static/css/theme.1a2b3c4d.css": "body{color:red}",
		"static/js/main.js":             "console.log(1)",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := New(Options{Root: writeSite(t), Logger: slog.New(slog.NewTextHandler(os.Stdout, nil))})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		s.hub.Close()
		ts.Close()
	})
	return s, ts
}

func get(t *testing.T, url string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServeFiles(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
		cache  string
		body   string
	}{
		{"home", "/", http.StatusOK, "no-store, no-cache, must-revalidate, proxy-revalidate", "home"},
		{"hashed asset", "/static/css/theme.1a2b3c4d.css", http.StatusOK, "public, max-age=31536000, immutable", "color:red"},
		{"plain asset", "/static/js/main.js", http.StatusOK, "public, max-age=60", "console.log"},
		{"missing", "/nope/", http.StatusNotFound, "", "missing page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+tt.path, nil)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.cache != "" && resp.Header.Get("Cache-Control") != tt.cache {
				t.Errorf("Cache-Control = %q, want %q", resp.Header.Get("Cache-Control"), tt.cache)
			}
			body, _ := io.ReadAll(resp.Body)
			if !strings.Contains(string(body), tt.body) {
				t.Errorf("body = %q, want it to contain %q", body, tt.body)
			}
		})
	}
}

func TestServeFileTraversal(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.URL.Path = "/../../etc/passwd"
	s.serveFile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 from inside the root", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing page") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestServeGzip(t *testing.T) {
	_, ts := newTestServer(t)

	resp := get(t, ts.URL+"/blog/post/", map[string]string{"Accept-Encoding": "gzip"})
	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q", resp.Header.Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "article article") {
		t.Error("decompressed body mismatch")
	}
}

func TestEventsReload(t *testing.T) {
	s, ts := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	r := bufio.NewReader(resp.Body)
	readEvent := func() string {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("read event: %v", err)
		}
		_, _ = r.ReadString('\n')
		return strings.TrimSpace(line)
	}

	if got := readEvent(); got != "data: connected" {
		t.Fatalf("first event = %q", got)
	}
	for s.hub.Clients() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	s.Reload()
	if got := readEvent(); got != "data: reload" {
		t.Errorf("second event = %q", got)
	}
}

func TestHubCloseEndsStreams(t *testing.T) {
	h := NewHub()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/events", nil)

	done := make(chan struct{})
	go func() {
		h.ServeHTTP(rec, req)
		close(done)
	}()
	for h.Clients() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	h.Close()
	h.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream still open after Close")
	}
	if h.Clients() != 0 {
		t.Errorf("clients = %d after close", h.Clients())
	}
}

func TestIsHashedAsset(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"theme.1a2b3c4d.css", true},
		{"main.0123456789ab.js", true},
		{"theme.css", false},
		{"jquery.min.js", false},
		{"theme.short.css", false},
		{"theme.zzzzzzzz.css", false},
	}
	for _, tt := range tests {
		if got := isHashedAsset(tt.name); got != tt.want {
			t.Errorf("isHashedAsset(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNormalizeRequestPath(t *testing.T) {
	tests := map[string]string{
		"/":                 "/",
		"/blog/post/":       "/blog/post/",
		"/blog//post":       "/blog/post",
		"/a/../b":           "/b",
		`\static\x.css`:     "/static/x.css",
		"/../../etc/passwd": "/etc/passwd",
	}
	for in, want := range tests {
		if got := normalizeRequestPath(in); got != want {
			t.Errorf("normalizeRequestPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Options{Root: writeSite(t), Port: "0", ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServe returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

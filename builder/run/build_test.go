package run

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/config"
	"github.com/harunosuke/web/builder/testutil"
	"github.com/harunosuke/web/builder/toc"
)

func newTestBuilder(t *testing.T, mutate func(*config.Config), opts ...Option) (*Builder, afero.Fs) {
	t.Helper()
	src, dest := testutil.NewSite(t, testutil.SamplePosts("posts"))

	cfg := config.Default()
	cfg.BaseURL = "https://example.com"
	if mutate != nil {
		mutate(cfg)
	}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))}, opts...)
	b, err := NewBuilder(cfg, src, dest, opts...)
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	return b, dest
}

func TestBuildWritesSite(t *testing.T) {
	b, dest := newTestBuilder(t, nil)

	m, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, path := range []string{
		"public/index.html",
		"public/404.html",
		"public/blog/index.html",
		"public/blog/rendering/index.html",
		"public/blog/older/index.html",
		"public/blog/category/programming/index.html",
		"public/blog/category/web-development/index.html",
		"public/blog/tag/go/index.html",
		"public/blog/tag/next-js/index.html",
		"public/rss.xml",
		"public/sitemap.xml",
		"public/static/css/theme.css",
		"public/static/js/main.js",
	} {
		testutil.AssertFileExists(t, dest, path)
	}
	testutil.AssertFileNotExists(t, dest, "public/blog/draft/index.html")

	if m.Posts() != 2 {
		t.Errorf("posts = %d, want 2", m.Posts())
	}
	if m.Pages() != 9 {
		t.Errorf("pages = %d, want 9", m.Pages())
	}
	if m.Failures() != 0 {
		t.Errorf("failures = %d", m.Failures())
	}
}

func TestBuildPostPage(t *testing.T) {
	b, dest := newTestBuilder(t, nil)
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	doc := testutil.ReadHTML(t, dest, "public/blog/rendering/index.html")

	if got := doc.Find("h1.post-title").Text(); got != "Rendering Math and Code" {
		t.Errorf("title = %q", got)
	}
	if theme, _ := doc.Find("html").Attr("data-theme"); theme != "light" {
		t.Errorf("theme = %q", theme)
	}
	if doc.Find(".post-content h2#setup").Length() != 1 {
		t.Error("heading id missing from content")
	}
	if doc.Find(".post-content .token.storage-keyword").Length() == 0 {
		t.Error("code not highlighted")
	}
	if !strings.Contains(doc.Find(".post-content").Text(), "$E = mc^2$") {
		t.Error("inline math not left for the client")
	}
	if doc.Find(`link[href*="katex"]`).Length() != 1 {
		t.Error("katex stylesheet missing for a post with math")
	}
	if doc.Find(`script[src*="katex.min.js"]`).Length() != 1 || doc.Find(`script[src*="auto-render"]`).Length() != 1 {
		t.Error("client-side math typesetter not loaded for a post with math")
	}
	plain := testutil.ReadHTML(t, dest, "public/blog/older/index.html")
	if plain.Find(`script[src*="katex"]`).Length() != 0 {
		t.Error("katex loaded for a post without math")
	}

	var entries []toc.Entry
	if err := json.Unmarshal([]byte(doc.Find("#toc-data").Text()), &entries); err != nil {
		t.Fatalf("toc-data is not JSON: %v", err)
	}
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if strings.Join(ids, ",") != "setup,display-math,日本語の見出し" {
		t.Errorf("toc ids = %v", ids)
	}
	if links := testutil.Attrs(doc, "aside.toc a[data-toc-id]", "data-toc-id"); strings.Join(links, ",") != strings.Join(ids, ",") {
		t.Errorf("TOC link ids = %v, want %v", links, ids)
	}
	if id, _ := doc.Find("#toc-data").Attr("data-identity"); len(id) != 16 {
		t.Errorf("identity = %q", id)
	}
	if got := doc.Find(".post-meta a.category").Text(); got != "Programming" {
		t.Errorf("category = %q", got)
	}
}

func TestBuildPagination(t *testing.T) {
	b, dest := newTestBuilder(t, func(c *config.Config) { c.PostsPerPage = 1 })
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	testutil.AssertFileExists(t, dest, "public/blog/page/2/index.html")
	testutil.AssertFileNotExists(t, dest, "public/blog/page/3/index.html")

	first := testutil.ReadHTML(t, dest, "public/blog/index.html")
	if href, _ := first.Find(".pagination a.next").Attr("href"); href != "https://example.com/blog/page/2/" {
		t.Errorf("next = %q", href)
	}
	if got := first.Find(".post-card-title").Text(); got != "Rendering Math and Code" {
		t.Errorf("first page post = %q", got)
	}

	second := testutil.ReadHTML(t, dest, "public/blog/page/2/index.html")
	if href, _ := second.Find(".pagination a.prev").Attr("href"); href != "https://example.com/blog/" {
		t.Errorf("prev = %q", href)
	}
}

func TestBuildDrafts(t *testing.T) {
	b, dest := newTestBuilder(t, func(c *config.Config) { c.Drafts = true })
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	testutil.AssertFileExists(t, dest, "public/blog/draft/index.html")
}

func TestBuildTaxonomyPages(t *testing.T) {
	b, dest := newTestBuilder(t, nil)
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tag := testutil.ReadHTML(t, dest, "public/blog/tag/go/index.html")
	if got := tag.Find(".post-card").Length(); got != 2 {
		t.Errorf("go tag posts = %d, want 2", got)
	}
	cat := testutil.ReadHTML(t, dest, "public/blog/category/web-development/index.html")
	if got := cat.Find(".list-header h1").Text(); got != "Web Development" {
		t.Errorf("category title = %q", got)
	}
}

func TestBuildLiveReload(t *testing.T) {
	b, dest := newTestBuilder(t, nil, WithLiveReload(true))
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	data, err := afero.ReadFile(dest, "public/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `EventSource("/events")`) {
		t.Error("live reload script missing")
	}
}

func TestBuildCompressed(t *testing.T) {
	b, dest := newTestBuilder(t, func(c *config.Config) { c.CompressOutput = true })
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	testutil.AssertFileNotExists(t, dest, "public/static/css/theme.css")

	doc := testutil.ReadHTML(t, dest, "public/index.html")
	href, _ := doc.Find(`link[rel="stylesheet"]`).First().Attr("href")
	if !strings.HasPrefix(href, "/static/css/theme.") || href == "/static/css/theme.css" {
		t.Errorf("stylesheet not fingerprinted: %q", href)
	}
	testutil.AssertFileExists(t, dest, "public"+href)
}

func TestBuildCancelled(t *testing.T) {
	b, _ := newTestBuilder(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Build(ctx); err == nil {
		t.Error("expected error from cancelled build")
	}
}

func TestBuildMissingKaTeXFallsBack(t *testing.T) {
	b, dest := newTestBuilder(t, func(c *config.Config) { c.Math.KaTeX = "vendor/katex.min.js" })
	if b.math != nil {
		t.Error("math renderer set without a script")
	}
	if _, err := b.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	doc := testutil.ReadHTML(t, dest, "public/blog/rendering/index.html")
	if doc.Find(`script[src*="auto-render"]`).Length() != 1 {
		t.Error("client-side math typesetter not loaded after KaTeX fallback")
	}
}

package generators

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/models"
)

func views() []models.PostView {
	return []models.PostView{
		{Post: models.Post{Title: "New", Excerpt: "newest", DateObj: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)}, Link: "/blog/new/", CategoryName: "Go"},
		{Post: models.Post{Title: "Mid", DateObj: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}, Link: "/blog/mid/"},
		{Post: models.Post{Title: "Old"}, Link: "/blog/old/"},
	}
}

func TestGenerateRSS(t *testing.T) {
	fs := afero.NewMemMapFs()
	feed := Feed{Title: "Blog", BaseURL: "https://example.com", Language: "ja", Limit: 2}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := GenerateRSS(fs, "public", feed, views(), now); err != nil {
		t.Fatalf("GenerateRSS failed: %v", err)
	}
	data, err := afero.ReadFile(fs, "public/rss.xml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), xml.Header) {
		t.Error("missing xml header")
	}

	var rss models.Rss
	if err := xml.Unmarshal(data, &rss); err != nil {
		t.Fatalf("invalid xml: %v", err)
	}
	if len(rss.Channel.Items) != 2 {
		t.Fatalf("items = %d, want 2 (limit)", len(rss.Channel.Items))
	}
	first := rss.Channel.Items[0]
	if first.Link != "https://example.com/blog/new/" || first.Guid != first.Link {
		t.Errorf("first item link = %q guid = %q", first.Link, first.Guid)
	}
	if first.Category != "Go" || first.Description != "newest" {
		t.Errorf("first item = %+v", first)
	}
	if rss.Channel.Language != "ja" {
		t.Errorf("language = %q", rss.Channel.Language)
	}
}

func TestGenerateSitemap(t *testing.T) {
	fs := afero.NewMemMapFs()
	tax := []models.TagData{{Name: "go", Link: "/blog/tag/go/"}}
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := GenerateSitemap(fs, "public", "https://example.com", views(), tax, now); err != nil {
		t.Fatalf("GenerateSitemap failed: %v", err)
	}
	data, err := afero.ReadFile(fs, "public/sitemap.xml")
	if err != nil {
		t.Fatal(err)
	}
	var set models.UrlSet
	if err := xml.Unmarshal(data, &set); err != nil {
		t.Fatalf("invalid xml: %v", err)
	}
	if len(set.Urls) != 6 {
		t.Fatalf("urls = %d, want 6", len(set.Urls))
	}
	if set.Urls[2].LastMod != "2024-05-01" {
		t.Errorf("post lastmod = %q", set.Urls[2].LastMod)
	}
	if set.Urls[4].LastMod != "" {
		t.Errorf("undated post lastmod = %q", set.Urls[4].LastMod)
	}
	if set.Urls[5].Loc != "https://example.com/blog/tag/go/" {
		t.Errorf("taxonomy loc = %q", set.Urls[5].Loc)
	}
}

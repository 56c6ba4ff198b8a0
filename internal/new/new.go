// Package new scaffolds a post file with frontmatter.
package new

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"github.com/harunosuke/web/builder/config"
	mdparser "github.com/harunosuke/web/builder/parser"
)

var (
	ErrExists    = errors.New("post already exists")
	ErrEmptySlug = errors.New("title produces empty slug")
)

// Options describes the post to create.
type Options struct {
	Title    string
	Slug     string
	Category string
	Tags     []string
	Draft    bool
	Date     time.Time
}

type frontMatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Excerpt  string   `yaml:"excerpt"`
	Category string   `yaml:"category,omitempty"`
	Tags     []string `yaml:"tags"`
	Draft    bool     `yaml:"draft,omitempty"`
}

const body = `
## はじめに

ここに本文を書きます。
`

// Create writes <dir>/<slug>.md and returns its path. An existing file is
// never overwritten.
func Create(fs afero.Fs, dir string, opts Options) (string, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return "", fmt.Errorf("title is required")
	}
	slug := opts.Slug
	if slug == "" {
		slug = mdparser.Slug(title)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}

	name := filepath.Join(dir, slug+".md")
	if ok, _ := afero.Exists(fs, name); ok {
		return "", fmt.Errorf("%w: %s", ErrExists, name)
	}

	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}
	tags := opts.Tags
	if tags == nil {
		tags = []string{}
	}
	data, err := render(frontMatter{
		Title:    title,
		Date:     date.Format("2006-01-02"),
		Excerpt:  "",
		Category: opts.Category,
		Tags:     tags,
		Draft:    opts.Draft,
	})
	if err != nil {
		return "", err
	}
	if err := verify(data, title); err != nil {
		return "", err
	}

	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := afero.WriteFile(fs, name, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return name, nil
}

func render(fm frontMatter) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	_ = enc.Close()
	buf.WriteString("---\n")
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// verify parses the generated file the way a markdown reader would and
// checks the title survived quoting.
func verify(data []byte, title string) error {
	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	ctx := parser.NewContext()
	if err := md.Convert(data, io.Discard, parser.WithContext(ctx)); err != nil {
		return fmt.Errorf("generated post does not parse: %w", err)
	}
	m, err := meta.TryGet(ctx)
	if err != nil {
		return fmt.Errorf("generated frontmatter does not parse: %w", err)
	}
	if got, _ := m["title"].(string); got != title {
		return fmt.Errorf("generated frontmatter title = %q, want %q", got, title)
	}
	return nil
}

// Run handles `new "Title" [--slug s] [--category c] [--tag t]...`.
func Run(args []string, logger *slog.Logger) error {
	var (
		set      *flag.FlagSet
		slug     *string
		category *string
		tags     *[]string
		draft    *bool
	)
	cfg, err := config.Load(args, func(fs *flag.FlagSet) {
		set = fs
		slug = fs.String("slug", "", "file name without extension")
		category = fs.String("category", "", "post category")
		tags = fs.StringSlice("tag", nil, "post tag (repeatable)")
		draft = fs.Bool("draft", false, "mark the post as a draft")
	})
	if err != nil {
		return err
	}
	if set.NArg() < 1 {
		return fmt.Errorf("usage: harunosuke new \"記事のタイトル\" [--slug s] [--category c] [--tag t]")
	}

	name, err := Create(afero.NewOsFs(), cfg.ContentDir, Options{
		Title:    strings.Join(set.Args(), " "),
		Slug:     *slug,
		Category: *category,
		Tags:     *tags,
		Draft:    *draft,
	})
	if err != nil {
		return err
	}
	logger.Info("✅ Created post", "path", name)
	return nil
}

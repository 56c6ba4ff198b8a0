// Package content loads posts from markdown files with YAML frontmatter.
package content

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/adrg/frontmatter"
	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/models"
	"github.com/harunosuke/web/builder/utils"
)

const (
	DefaultAuthor = "はるのすけ"
	DefaultImage  = "https://images.unsplash.com/photo-1499951360447-b19be8fe80f5?w=800&h=400&fit=crop&crop=smart"

	// readRate is characters read per minute.
	readRate = 200
)

// Repository is the read side used by the site builder.
type Repository interface {
	// GetPostBySlug returns nil, nil when no such post exists.
	GetPostBySlug(slug string) (*models.Post, error)
	GetAllPosts() ([]models.Post, error)
	GetPostsByCategory(slug string) ([]models.Post, error)
	GetPostsByTag(slug string) ([]models.Post, error)
	Categories() ([]models.TagData, error)
	Tags() ([]models.TagData, error)
}

type header struct {
	Title       string   `yaml:"title"`
	Excerpt     string   `yaml:"excerpt"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Author      string   `yaml:"author"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
	Draft       bool     `yaml:"draft"`
}

// FSRepository reads <dir>/*.md from an afero filesystem. Posts are loaded
// once and kept for the lifetime of the repository.
type FSRepository struct {
	fs     afero.Fs
	dir    string
	author string
	image  string
	drafts bool

	excerptLength int
	logger        *slog.Logger

	once  sync.Once
	posts []models.Post
	err   error
}

type Option func(*FSRepository)

// WithDefaults sets the author and image used when frontmatter omits them.
func WithDefaults(author, image string) Option {
	return func(r *FSRepository) {
		if author != "" {
			r.author = author
		}
		if image != "" {
			r.image = image
		}
	}
}

func WithDrafts(drafts bool) Option {
	return func(r *FSRepository) { r.drafts = drafts }
}

func WithExcerptLength(n int) Option {
	return func(r *FSRepository) { r.excerptLength = n }
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *FSRepository) { r.logger = logger }
}

func NewFSRepository(fs afero.Fs, dir string, opts ...Option) *FSRepository {
	r := &FSRepository{
		fs:            fs,
		dir:           dir,
		author:        DefaultAuthor,
		image:         DefaultImage,
		excerptLength: DefaultExcerptLength,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

func (r *FSRepository) GetPostBySlug(slug string) (*models.Post, error) {
	slug = strings.TrimSuffix(slug, ".md")
	if slug == "" || strings.ContainsAny(slug, `/\`) {
		return nil, nil
	}
	data, err := afero.ReadFile(r.fs, path.Join(r.dir, slug+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	post, err := r.parse(slug, data)
	if err != nil {
		return nil, err
	}
	if post.Draft && !r.drafts {
		return nil, nil
	}
	return post, nil
}

// GetAllPosts returns every published post, newest first. Posts that fail
// to parse are logged and left out.
func (r *FSRepository) GetAllPosts() ([]models.Post, error) {
	r.once.Do(func() {
		r.posts, r.err = r.load()
	})
	if r.err != nil {
		return nil, r.err
	}
	out := make([]models.Post, len(r.posts))
	copy(out, r.posts)
	return out, nil
}

func (r *FSRepository) load() ([]models.Post, error) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn("content directory missing", "dir", r.dir)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", r.dir, err)
	}

	var posts []models.Post
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		slug := strings.TrimSuffix(e.Name(), ".md")
		post, err := r.GetPostBySlug(slug)
		if err != nil {
			r.logger.Warn("skipping post", "slug", slug, "error", err)
			continue
		}
		if post == nil {
			continue
		}
		if post.Category != "" && !IsValidCategory(post.Category) {
			r.logger.Warn("unknown category", "slug", slug, "category", post.Category)
		}
		posts = append(posts, *post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Slug < posts[j].Slug
	})
	return posts, nil
}

func (r *FSRepository) parse(slug string, data []byte) (*models.Post, error) {
	var h header
	body, err := frontmatter.Parse(bytes.NewReader(data), &h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", slug, ErrInvalidFrontmatter, err)
	}
	if strings.TrimSpace(h.Title) == "" {
		return nil, fmt.Errorf("%s: %w", slug, ErrMissingTitle)
	}

	content := string(body)
	post := &models.Post{
		Slug:     slug,
		Title:    h.Title,
		Excerpt:  h.Excerpt,
		Date:     h.Date,
		Author:   h.Author,
		Category: h.Category,
		Tags:     h.Tags,
		Content:  content,
		ReadTime: utils.ReadTime(content, readRate),
		Image:    h.Image,
		Draft:    h.Draft,
	}
	if post.Excerpt == "" {
		post.Excerpt = h.Description
	}
	if post.Excerpt == "" {
		post.Excerpt = Excerpt(content, r.excerptLength)
	}
	if post.Author == "" {
		post.Author = r.author
	}
	if post.Image == "" {
		post.Image = r.image
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}
	if t, ok := utils.ParseDate(h.Date); ok {
		post.DateObj = t
	} else if h.Date != "" {
		r.logger.Warn("unparseable date", "slug", slug, "date", h.Date)
	}
	return post, nil
}

func (r *FSRepository) GetPostsByCategory(slug string) ([]models.Post, error) {
	return r.filter(func(p models.Post) bool {
		return p.Category != "" && CategorySlug(p.Category) == slug
	})
}

func (r *FSRepository) GetPostsByTag(slug string) ([]models.Post, error) {
	return r.filter(func(p models.Post) bool {
		for _, t := range p.Tags {
			if TagSlug(t) == slug {
				return true
			}
		}
		return false
	})
}

func (r *FSRepository) filter(keep func(models.Post) bool) ([]models.Post, error) {
	all, err := r.GetAllPosts()
	if err != nil {
		return nil, err
	}
	var out []models.Post
	for _, p := range all {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories lists every category in use with its post count.
func (r *FSRepository) Categories() ([]models.TagData, error) {
	return r.count(func(p models.Post) []string {
		if p.Category == "" {
			return nil
		}
		return []string{p.Category}
	}, CategorySlug, "/blog/category/")
}

func (r *FSRepository) Tags() ([]models.TagData, error) {
	return r.count(func(p models.Post) []string { return p.Tags }, TagSlug, "/blog/tag/")
}

func (r *FSRepository) count(names func(models.Post) []string, slugOf func(string) string, prefix string) ([]models.TagData, error) {
	all, err := r.GetAllPosts()
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var out []models.TagData
	for _, p := range all {
		seen := map[string]bool{}
		for _, name := range names(p) {
			slug := slugOf(name)
			if slug == "" || seen[slug] {
				continue
			}
			seen[slug] = true
			if i, ok := index[slug]; ok {
				out[i].Count++
				continue
			}
			index[slug] = len(out)
			out = append(out, models.TagData{Name: name, Slug: slug, Link: prefix + slug + "/", Count: 1})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

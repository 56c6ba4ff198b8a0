package run

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/harunosuke/web/builder/assets"
	"github.com/harunosuke/web/builder/content"
	"github.com/harunosuke/web/builder/metrics"
	"github.com/harunosuke/web/builder/models"
	"github.com/harunosuke/web/builder/parser"
	"github.com/harunosuke/web/builder/renderer"
	"github.com/harunosuke/web/builder/toc"
	"github.com/harunosuke/web/builder/utils"
)

// article is one post after markdown rendering.
type article struct {
	view models.PostView
	doc  *parser.Document
}

// Build executes a single build pass and returns what it did.
func (b *Builder) Build(ctx context.Context) (*metrics.BuildMetrics, error) {
	cfg := b.cfg
	m := metrics.NewBuildMetrics()
	b.logger.Info("🔨 Building site...", "version", cfg.BuildVersion, "workers", cfg.Build.DefaultWorkers)

	repo := content.NewFSRepository(b.SourceFs, cfg.ContentDir,
		content.WithDefaults(cfg.Author, cfg.Image),
		content.WithDrafts(cfg.Drafts),
		content.WithExcerptLength(cfg.Build.ExcerptLength),
		content.WithLogger(b.logger),
	)
	posts, err := repo.GetAllPosts()
	if err != nil {
		return m, fmt.Errorf("failed to load posts: %w", err)
	}

	assetMap, err := utils.BuildAssets(assets.Static(), b.DestFs, cfg.OutputDir, cfg.CompressOutput, nil)
	if err != nil {
		return m, err
	}
	b.rnd.SetAssets(assetMap)
	m.AssetTime = m.TotalDuration()

	articles := b.renderArticles(ctx, posts, m)
	if err := ctx.Err(); err != nil {
		return m, err
	}
	m.RenderTime = m.TotalDuration() - m.AssetTime

	views := make([]models.PostView, len(articles))
	for i, a := range articles {
		views[i] = a.view
	}
	categories, err := repo.Categories()
	if err != nil {
		return m, err
	}
	tags, err := repo.Tags()
	if err != nil {
		return m, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Build.DefaultWorkers)

	for _, a := range articles {
		a := a
		g.Go(func() error { return b.renderPost(gctx, a, m) })
	}
	g.Go(func() error { return b.renderIndex(views, categories, m) })
	for _, job := range b.paginate("/blog/", "Blog", cfg.Description, views, tags) {
		job := job
		g.Go(func() error { return b.renderList(job, m) })
	}
	for _, c := range categories {
		c := c
		g.Go(func() error {
			list, err := repo.GetPostsByCategory(c.Slug)
			if err != nil {
				return err
			}
			return b.renderTaxonomy(c, content.CategoryDisplayName(c.Slug), viewsFor(list, views), m)
		})
	}
	for _, t := range tags {
		t := t
		g.Go(func() error {
			list, err := repo.GetPostsByTag(t.Slug)
			if err != nil {
				return err
			}
			return b.renderTaxonomy(t, "#"+content.TagDisplayName(t.Slug), viewsFor(list, views), m)
		})
	}
	g.Go(func() error { return b.render404(m) })
	g.Go(func() error { return b.renderFeeds(views, append(categories, tags...)) })

	if err := g.Wait(); err != nil {
		return m, err
	}

	m.RecordEnd()
	b.logger.Info("✅ Build Complete.", "summary", m.String())
	return m, nil
}

// renderArticles runs every post through the markdown pipeline in parallel.
// Order follows posts; a post whose render panics is logged and left out.
func (b *Builder) renderArticles(ctx context.Context, posts []models.Post, m *metrics.BuildMetrics) []article {
	results := utils.Map(ctx, b.cfg.Build.DefaultWorkers, posts, func(_ context.Context, p models.Post) (article, error) {
		doc := b.pipeline.Render(p.Content)
		m.RecordPost(len(doc.Headings), doc.Count(parser.CodeBlock), doc.Count(parser.MathBlock)+doc.Count(parser.MathInline))
		return article{view: b.view(p), doc: doc}, nil
	})

	out := make([]article, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			if ctx.Err() == nil {
				b.logger.Error("❌ Failed to render post", "slug", posts[i].Slug, "error", r.Err)
				m.RecordFailure()
			}
			continue
		}
		out = append(out, r.Value)
	}
	return out
}

func (b *Builder) view(p models.Post) models.PostView {
	v := models.PostView{Post: p, Link: "/blog/" + p.Slug + "/"}
	if p.Category != "" {
		v.CategorySlug = content.CategorySlug(p.Category)
		v.CategoryName = content.CategoryDisplayName(v.CategorySlug)
		v.CategoryLink = "/blog/category/" + v.CategorySlug + "/"
	}
	for _, t := range p.Tags {
		slug := content.TagSlug(t)
		if slug == "" {
			continue
		}
		v.TagLinks = append(v.TagLinks, models.TagData{
			Name: content.TagDisplayName(slug),
			Slug: slug,
			Link: "/blog/tag/" + slug + "/",
		})
	}
	return v
}

// viewsFor maps filtered posts back onto their prepared views.
func viewsFor(posts []models.Post, views []models.PostView) []models.PostView {
	bySlug := make(map[string]models.PostView, len(views))
	for _, v := range views {
		bySlug[v.Slug] = v
	}
	out := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		if v, ok := bySlug[p.Slug]; ok {
			out = append(out, v)
		}
	}
	return out
}

// base fills the fields every page shares.
func (b *Builder) base(title, permalink string) models.PageData {
	cfg := b.cfg
	return models.PageData{
		Title:        title,
		TabTitle:     title + " | " + cfg.Title,
		Description:  cfg.Description,
		BaseURL:      cfg.BaseURL,
		Language:     cfg.Language,
		Theme:        cfg.Theme.Default,
		Permalink:    cfg.BaseURL + permalink,
		Image:        cfg.Image,
		SiteTitle:    cfg.Title,
		LiveReload:   b.liveReload,
		BuildVersion: cfg.BuildVersion,
	}
}

func (b *Builder) outPath(urlPath string) string {
	return filepath.Join(b.cfg.OutputDir, filepath.FromSlash(urlPath), "index.html")
}

func (b *Builder) renderPost(ctx context.Context, a article, m *metrics.BuildMetrics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := b.cfg
	data := b.base(a.view.Title, a.view.Link)
	data.Post = &a.view
	data.Description = a.view.Excerpt
	if a.view.Image != "" {
		data.Image = a.view.Image
	}
	data.Content = template.HTML(a.doc.HTML)
	data.Headings = a.doc.TOC(cfg.TOC.MinLevel, cfg.TOC.MaxLevel)
	data.HasMath = a.doc.HasMath()
	data.ClientMath = data.HasMath && !b.math.Available()
	data.HasCode = a.doc.Count(parser.CodeBlock) > 0
	data.Identity = a.doc.Identity

	entries, err := json.Marshal(toc.Entries(data.Headings))
	if err != nil {
		return fmt.Errorf("encode toc for %s: %w", a.view.Slug, err)
	}
	data.TOCData = template.JS(entries)

	return b.write(renderer.PagePost, b.outPath(a.view.Link), data, m)
}

func (b *Builder) write(page renderer.Page, path string, data models.PageData, m *metrics.BuildMetrics) error {
	if err := b.rnd.Render(page, path, data); err != nil {
		m.RecordFailure()
		return err
	}
	m.RecordPage()
	return nil
}

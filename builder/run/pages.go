package run

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/harunosuke/web/builder/generators"
	"github.com/harunosuke/web/builder/metrics"
	"github.com/harunosuke/web/builder/models"
	"github.com/harunosuke/web/builder/renderer"
)

// listJob is one page of a paginated post list.
type listJob struct {
	urlPath string
	data    models.PageData
}

func (b *Builder) renderIndex(views []models.PostView, categories []models.TagData, m *metrics.BuildMetrics) error {
	featured := views
	if n := b.cfg.FeaturedCount; len(featured) > n {
		featured = featured[:n]
	}
	data := b.base(b.cfg.Title, "/")
	data.TabTitle = b.cfg.Title
	data.Posts = featured
	data.Categories = categories
	return b.write(renderer.PageIndex, filepath.Join(b.cfg.OutputDir, "index.html"), data, m)
}

// paginate splits views into pages of postsPerPage under root. Page one
// lives at root, later pages at root/page/N/.
func (b *Builder) paginate(root, title, description string, views []models.PostView, tags []models.TagData) []listJob {
	per := b.cfg.PostsPerPage
	total := (len(views) + per - 1) / per
	if total == 0 {
		total = 1
	}
	pageURL := func(i int) string {
		if i == 1 {
			return root
		}
		return fmt.Sprintf("%spage/%d/", root, i)
	}

	jobs := make([]listJob, 0, total)
	for i := 1; i <= total; i++ {
		start, end := (i-1)*per, i*per
		if end > len(views) {
			end = len(views)
		}
		if start > end {
			start = end
		}
		p := models.Paginator{
			CurrentPage: i,
			TotalPages:  total,
			HasPrev:     i > 1,
			HasNext:     i < total,
		}
		if p.HasPrev {
			p.PrevURL = b.cfg.BaseURL + pageURL(i-1)
		}
		if p.HasNext {
			p.NextURL = b.cfg.BaseURL + pageURL(i+1)
		}

		data := b.base(title, pageURL(i))
		if i > 1 {
			data.TabTitle = fmt.Sprintf("%s (%d/%d) | %s", title, i, total, b.cfg.Title)
		}
		data.Description = description
		data.ListTitle = title
		data.Posts = views[start:end]
		data.Paginator = p
		data.Tags = tags
		jobs = append(jobs, listJob{urlPath: pageURL(i), data: data})
	}
	return jobs
}

func (b *Builder) renderList(job listJob, m *metrics.BuildMetrics) error {
	return b.write(renderer.PageList, b.outPath(job.urlPath), job.data, m)
}

// renderTaxonomy writes one category or tag page with every matching post.
func (b *Builder) renderTaxonomy(t models.TagData, title string, views []models.PostView, m *metrics.BuildMetrics) error {
	data := b.base(title, t.Link)
	data.ListTitle = title
	data.Description = fmt.Sprintf("%sの記事一覧 (%d件)", title, len(views))
	data.Posts = views
	return b.write(renderer.PageList, b.outPath(t.Link), data, m)
}

func (b *Builder) render404(m *metrics.BuildMetrics) error {
	data := b.base("404 - ページが見つかりません", "/404.html")
	return b.write(renderer.PageNotFound, filepath.Join(b.cfg.OutputDir, "404.html"), data, m)
}

func (b *Builder) renderFeeds(views []models.PostView, taxonomies []models.TagData) error {
	cfg := b.cfg
	now := cfg.BuildTime
	if now.IsZero() {
		now = time.Now()
	}
	feed := generators.Feed{
		Title:       cfg.Title,
		Description: cfg.Description,
		BaseURL:     cfg.BaseURL,
		Language:    cfg.Language,
		Limit:       cfg.RSSLimit,
	}
	if err := generators.GenerateRSS(b.DestFs, cfg.OutputDir, feed, views, now); err != nil {
		return err
	}
	return generators.GenerateSitemap(b.DestFs, cfg.OutputDir, cfg.BaseURL, views, taxonomies, now)
}

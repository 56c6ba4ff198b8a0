// Handles template loading and page output
package renderer

import (
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"github.com/tdewolff/minify/v2"

	"github.com/harunosuke/web/builder/models"
	"github.com/harunosuke/web/builder/utils"
)

// Page names a page template under the template root.
type Page string

const (
	PageIndex    Page = "index.html"
	PageList     Page = "list.html"
	PagePost     Page = "post.html"
	PageNotFound Page = "404.html"
)

var pages = []Page{PageIndex, PageList, PagePost, PageNotFound}

var jst = time.FixedZone("JST", 9*60*60)

// Renderer executes page templates into the destination filesystem.
type Renderer struct {
	templates map[Page]*template.Template
	destFs    afero.Fs
	compress  bool
	minifier  *minify.M
	logger    *slog.Logger

	mu     sync.RWMutex
	assets map[string]string
}

// FuncMap returns the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"lower": strings.ToLower,
		"now":   time.Now,
		"year":  func() int { return time.Now().In(jst).Year() },
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("2006年1月2日")
		},
		// asset maps a source path to its fingerprinted URL.
		"asset": func(assets map[string]string, path string) string {
			if u, ok := assets[path]; ok {
				return u
			}
			return path
		},
	}
}

// New parses every page template from templates. Each page is parsed
// together with layout.html and the partials.
func New(templates fs.FS, destFs afero.Fs, compress bool, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{
		templates: make(map[Page]*template.Template, len(pages)),
		destFs:    destFs,
		compress:  compress,
		logger:    logger,
	}
	if compress {
		r.minifier = utils.NewMinifier()
	}

	partials, err := fs.Glob(templates, "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list partials: %w", err)
	}
	for _, page := range pages {
		patterns := append([]string{"layout.html", string(page)}, partials...)
		tmpl, err := template.New(string(page)).Funcs(FuncMap()).ParseFS(templates, patterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// SetAssets installs the asset map used by the asset template helper.
func (r *Renderer) SetAssets(assets map[string]string) {
	r.mu.Lock()
	r.assets = assets
	r.mu.Unlock()
}

// Render executes page with data and writes the result to path on the
// destination filesystem.
func (r *Renderer) Render(page Page, path string, data models.PageData) error {
	tmpl, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown template %q", page)
	}

	r.mu.RLock()
	data.Assets = r.assets
	r.mu.RUnlock()

	buf := utils.SharedBufferPool.Get()
	defer utils.SharedBufferPool.Put(buf)

	if err := tmpl.ExecuteTemplate(buf, "layout", data); err != nil {
		r.logger.Error("❌ Failed to render page", "path", path, "error", err)
		return fmt.Errorf("render %s: %w", path, err)
	}

	out := buf.Bytes()
	if r.compress {
		min, err := r.minifier.Bytes("text/html", out)
		if err != nil {
			r.logger.Warn("⚠️  Minify failed, writing unminified", "path", path, "error", err)
		} else {
			out = min
		}
	}
	return utils.WriteFileVFS(r.destFs, path, out)
}

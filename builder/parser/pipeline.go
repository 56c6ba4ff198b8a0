// Renders article markdown into HTML with protected math and code spans
package parser

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/harunosuke/web/builder/highlight"
	"github.com/harunosuke/web/builder/models"
	"github.com/harunosuke/web/builder/utils"
)

// MathTypesetter renders LaTeX to HTML on the server. Implementations may be
// unavailable, in which case math is left as literal delimiters for the
// browser-side typesetter.
type MathTypesetter interface {
	Available() bool
	RenderMath(latex string, displayMode bool) (string, error)
}

// Document is the result of rendering one article.
type Document struct {
	Identity string // content hash of Raw
	Raw      string
	Blocks   []Block
	HTML     string
	Headings []models.Heading
	Spans    []ProtectedSpan
}

// Count returns how many spans of kind the document contains.
func (d *Document) Count(kind SpanKind) int {
	n := 0
	for _, sp := range d.Spans {
		if sp.Kind == kind {
			n++
		}
	}
	return n
}

// HasMath reports whether the document contains any math span.
func (d *Document) HasMath() bool {
	return d.Count(MathBlock)+d.Count(MathInline) > 0
}

// TOC returns the anchorable headings with level in [minLevel, maxLevel].
func (d *Document) TOC(minLevel, maxLevel int) []models.Heading {
	var out []models.Heading
	for _, h := range d.Headings {
		if h.Anchorable() && h.Level >= minLevel && h.Level <= maxLevel {
			out = append(out, h)
		}
	}
	return out
}

// Pipeline turns markdown into a Document. It holds no per-document state
// and is safe for concurrent use.
type Pipeline struct {
	highlighter *highlight.Highlighter
	typesetter  MathTypesetter
	sanitizer   *bluemonday.Policy
	onHeadings  func([]models.Heading)
	rawHTML     bool
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithHighlighter(h *highlight.Highlighter) Option {
	return func(p *Pipeline) { p.highlighter = h }
}

func WithTypesetter(t MathTypesetter) Option {
	return func(p *Pipeline) { p.typesetter = t }
}

// WithSanitizer filters every rendered block through policy.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(p *Pipeline) { p.sanitizer = policy }
}

// WithHeadingCallback registers fn to receive each document's headings.
func WithHeadingCallback(fn func([]models.Heading)) Option {
	return func(p *Pipeline) { p.onHeadings = fn }
}

func WithRawHTML(raw bool) Option {
	return func(p *Pipeline) { p.rawHTML = raw }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline. Raw HTML is kept by default.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{rawHTML: true}
	for _, opt := range opts {
		opt(p)
	}
	if p.highlighter == nil {
		p.highlighter = highlight.New()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// NewSanitizer returns a user-content policy that keeps the markup the
// pipeline itself emits.
func NewSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Globally()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("aria-hidden").OnElements("span")
	policy.AllowAttrs("data-lang").OnElements("div")
	policy.AllowElements("button")
	policy.AllowAttrs("type", "aria-label").OnElements("button")
	return policy
}

// Render runs extraction, transformation and restoration over markdown.
// It never fails: malformed input degrades to literal text.
func (p *Pipeline) Render(markdown string) *Document {
	sanitized, spans := Extract(markdown)

	titles := newRestorer(spans, func(sp ProtectedSpan) string { return sp.Raw }, p.logger)
	tr := &Transformer{Resolve: titles.restore, RawHTML: p.rawHTML}
	blocks, headings := tr.Transform(sanitized)

	content := newRestorer(spans, p.renderSpan, p.logger)
	for i := range blocks {
		blocks[i].HTML = content.restore(blocks[i].HTML)
		if p.sanitizer != nil {
			blocks[i].HTML = p.sanitizer.Sanitize(blocks[i].HTML)
		}
	}
	for _, sp := range content.missing() {
		p.logger.Warn("protected span lost during transformation",
			"kind", sp.Kind.String(), "index", sp.Index, "offset", sp.Offset)
	}

	doc := &Document{
		Identity: utils.HashContent("markdown", markdown),
		Raw:      markdown,
		Blocks:   blocks,
		HTML:     Render(blocks),
		Headings: headings,
		Spans:    spans,
	}
	if p.onHeadings != nil {
		p.onHeadings(headings)
	}
	return doc
}

func (p *Pipeline) renderSpan(sp ProtectedSpan) string {
	switch sp.Kind {
	case CodeBlock:
		return p.renderCode(sp.Lang, sp.Body)
	case CodeInline:
		return `<code class="inline-code">` + shieldSentinel(html.EscapeString(sp.Body)) + `</code>`
	case MathBlock, MathInline:
		return p.renderMath(sp)
	}
	return escapeText(sp.Raw, true)
}

func (p *Pipeline) renderCode(lang, code string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	class := "language-text"
	if lang != "" {
		class = "language-" + html.EscapeString(highlight.Canonical(lang))
	}
	return fmt.Sprintf(`<div class="code-wrapper" data-lang="%s"><div class="code-header"><span class="code-lang">%s</span>`+
		`<button class="code-copy" type="button" aria-label="Copy code">Copy</button></div>`+
		`<pre class="code-block %s"><code>%s</code></pre></div>`,
		html.EscapeString(lang), html.EscapeString(highlight.DisplayName(lang)), class,
		p.highlighter.Highlight(code, lang))
}

// currencyRe keeps "$5 and $10" from being typeset as math.
var currencyRe = regexp.MustCompile(`^\d`)

func (p *Pipeline) renderMath(sp ProtectedSpan) string {
	literal := shieldSentinel(escapeText(sp.Raw, true))
	display := sp.Kind == MathBlock
	body := strings.TrimSpace(sp.Body)
	if !display && currencyRe.MatchString(body) {
		return `<span class="no-math">` + literal + `</span>`
	}
	if body == "" || p.typesetter == nil || !p.typesetter.Available() {
		return literal
	}
	out, err := p.typesetter.RenderMath(body, display)
	if err != nil || out == "" {
		p.logger.Debug("math typesetting skipped", "error", err, "offset", sp.Offset)
		return literal
	}
	if display {
		return `<div class="math-display">` + out + `</div>`
	}
	return `<span class="math-inline">` + out + `</span>`
}

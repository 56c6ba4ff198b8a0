// Package highlight classifies source code into token spans for display.
//
// Each language family has its own ordered rule table. Rules run over
// HTML-escaped source; every classified token is parked in a per-call arena
// behind a Private Use Area placeholder so later, more generic rules cannot
// match inside it. The arena is expanded at the end.
package highlight

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Family selects the rule table used for a language.
type Family int

const (
	Plain Family = iota
	JSLike
	PyLike
	HTMLLike
	CSSLike
	JSON
)

func (f Family) String() string {
	switch f {
	case JSLike:
		return "js"
	case PyLike:
		return "python"
	case HTMLLike:
		return "markup"
	case CSSLike:
		return "css"
	case JSON:
		return "json"
	}
	return "plain"
}

var familyAliases = map[string]Family{
	"js":         JSLike,
	"javascript": JSLike,
	"jsx":        JSLike,
	"mjs":        JSLike,
	"cjs":        JSLike,
	"ts":         JSLike,
	"typescript": JSLike,
	"tsx":        JSLike,
	"react":      JSLike,
	"py":         PyLike,
	"py3":        PyLike,
	"python":     PyLike,
	"python3":    PyLike,
	"html":       HTMLLike,
	"xhtml":      HTMLLike,
	"xml":        HTMLLike,
	"markup":     HTMLLike,
	"svg":        HTMLLike,
	"vue":        HTMLLike,
	"css":        CSSLike,
	"scss":       CSSLike,
	"less":       CSSLike,
	"json":       JSON,
	"jsonc":      JSON,
	"json5":      JSON,
}

// canonicalNames maps short aliases to the name used in language-* classes.
var canonicalNames = map[string]string{
	"js":    "javascript",
	"ts":    "typescript",
	"py":    "python",
	"sh":    "bash",
	"shell": "bash",
	"zsh":   "bash",
	"yml":   "yaml",
	"md":    "markdown",
	"html":  "markup",
	"xml":   "markup",
	"svg":   "markup",
}

var displayNames = map[string]string{
	"javascript": "JavaScript",
	"typescript": "TypeScript",
	"jsx":        "JSX",
	"tsx":        "TSX",
	"python":     "Python",
	"markup":     "HTML",
	"css":        "CSS",
	"scss":       "SCSS",
	"json":       "JSON",
	"bash":       "Shell",
	"yaml":       "YAML",
	"markdown":   "Markdown",
	"go":         "Go",
	"rust":       "Rust",
	"sql":        "SQL",
}

// FamilyOf resolves a fence language tag to its family. Tags missing from
// the alias table are looked up in chroma's lexer registry before falling
// back to Plain.
func FamilyOf(lang string) Family {
	key := strings.ToLower(strings.TrimSpace(lang))
	if key == "" {
		return Plain
	}
	if f, ok := familyAliases[key]; ok {
		return f
	}
	if l := lexers.Get(key); l != nil {
		if f, ok := familyFromLexer(l); ok {
			return f
		}
	}
	return Plain
}

func familyFromLexer(l chroma.Lexer) (Family, bool) {
	cfg := l.Config()
	if cfg == nil {
		return Plain, false
	}
	if f, ok := familyAliases[strings.ToLower(cfg.Name)]; ok {
		return f, true
	}
	for _, alias := range cfg.Aliases {
		if f, ok := familyAliases[strings.ToLower(alias)]; ok {
			return f, true
		}
	}
	return Plain, false
}

// Canonical returns the normalised language name for lang.
func Canonical(lang string) string {
	key := strings.ToLower(strings.TrimSpace(lang))
	if c, ok := canonicalNames[key]; ok {
		return c
	}
	return key
}

// DisplayName returns the label shown in a code block header.
func DisplayName(lang string) string {
	key := Canonical(lang)
	if key == "" {
		return "Text"
	}
	if name, ok := displayNames[key]; ok {
		return name
	}
	if l := lexers.Get(key); l != nil && l.Config() != nil {
		return l.Config().Name
	}
	return strings.ToUpper(key)
}

// Highlighter renders code blocks. The zero configuration never guesses
// languages for untagged blocks.
type Highlighter struct {
	guess  bool
	logger *slog.Logger
}

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithGuess lets untagged blocks be classified by chroma's content analysers.
func WithGuess(guess bool) Option {
	return func(h *Highlighter) { h.guess = guess }
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Highlighter) { h.logger = logger }
}

func New(opts ...Option) *Highlighter {
	h := &Highlighter{}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

var std = New()

// Highlight renders code with the default Highlighter.
func Highlight(code, lang string) string {
	return std.Highlight(code, lang)
}

// Highlight returns code as escaped HTML with token spans. Unknown languages
// come back escaped without classification.
func (h *Highlighter) Highlight(code, lang string) string {
	fam := h.family(code, lang)
	src := escape(code)
	switch fam {
	case JSLike:
		return run(src, jsRules)
	case PyLike:
		return run(src, pyRules)
	case HTMLLike:
		return run(src, markupRules)
	case CSSLike:
		return run(src, cssRules)
	case JSON:
		return run(src, jsonRules)
	}
	return shieldPrivateUse(src, func(ref string) string { return ref })
}

func (h *Highlighter) family(code, lang string) Family {
	if strings.TrimSpace(lang) != "" || !h.guess {
		return FamilyOf(lang)
	}
	l := lexers.Analyse(code)
	if l == nil {
		return Plain
	}
	f, _ := familyFromLexer(l)
	h.logger.Debug("guessed code language", "lexer", l.Config().Name, "family", f.String())
	return f
}

func escape(s string) string {
	if !strings.ContainsAny(s, "&<>") {
		return s
	}
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func privateUse(r rune) bool { return r >= 0xE000 && r <= 0xF8FF }

// shieldPrivateUse writes Private Use Area runes in code as character
// references passed through keep, so authored runes never read as arena
// placeholders. Invalid UTF-8 is copied through unchanged.
func shieldPrivateUse(s string, keep func(string) string) string {
	if !strings.ContainsFunc(s, privateUse) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if privateUse(r) {
			b.WriteString(keep(fmt.Sprintf("&#x%X;", r)))
		} else {
			b.WriteString(s[:size])
		}
		s = s[size:]
	}
	return b.String()
}

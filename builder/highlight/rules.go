package highlight

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// TokenClass names the classification carried by a token span.
type TokenClass string

const (
	TokenPlain           TokenClass = "plain"
	TokenKeyword         TokenClass = "keyword"
	TokenStorageKeyword  TokenClass = "storage-keyword"
	TokenControlKeyword  TokenClass = "control-keyword"
	TokenImportKeyword   TokenClass = "import-keyword"
	TokenLanguageKeyword TokenClass = "language-keyword"
	TokenModifierKeyword TokenClass = "modifier-keyword"
	TokenTypeKeyword     TokenClass = "type-keyword"
	TokenHook            TokenClass = "hook"
	TokenImportName      TokenClass = "import-name"
	TokenTypeName        TokenClass = "type-name"
	TokenString          TokenClass = "string"
	TokenTemplateString  TokenClass = "template-string"
	TokenDocstring       TokenClass = "docstring"
	TokenComment         TokenClass = "comment"
	TokenNumber          TokenClass = "number"
	TokenBoolean         TokenClass = "boolean"
	TokenFunction        TokenClass = "function"
	TokenProperty        TokenClass = "property"
	TokenTag             TokenClass = "tag"
	TokenPunctuation     TokenClass = "punctuation"
	TokenRegex           TokenClass = "regex"
	TokenBuiltin         TokenClass = "builtin"
	TokenClassName       TokenClass = "class-name"
	TokenDecorator       TokenClass = "decorator"
	TokenDoctype         TokenClass = "doctype"
	TokenAttrName        TokenClass = "attr-name"
	TokenAttrValue       TokenClass = "attr-value"
	TokenAttrSpecial     TokenClass = "attr-special"
	TokenAttrImportant   TokenClass = "attr-important"
	TokenClassValue      TokenClass = "class-value"
	TokenIDValue         TokenClass = "id-value"
	TokenEntity          TokenClass = "entity"
	TokenComponent       TokenClass = "component"
	TokenHTMLStructure   TokenClass = "html-structure"
	TokenHTMLContainer   TokenClass = "html-container"
	TokenHTMLText        TokenClass = "html-text"
	TokenHTMLMedia       TokenClass = "html-media"
	TokenHTMLForm        TokenClass = "html-form"
	TokenHTMLTable       TokenClass = "html-table"
	TokenHTMLList        TokenClass = "html-list"
	TokenPlainText       TokenClass = "plain-text"
	TokenAtrule          TokenClass = "atrule"
	TokenCSSClass        TokenClass = "css-class"
	TokenCSSID           TokenClass = "css-id"
	TokenCSSElement      TokenClass = "css-element"
	TokenCSSUniversal    TokenClass = "css-universal"
	TokenPseudoClass     TokenClass = "pseudo-class"
	TokenPseudoElement   TokenClass = "pseudo-element"
	TokenUnit            TokenClass = "unit"
	TokenColor           TokenClass = "color"
	TokenImportant       TokenClass = "important"
)

// DefaultMatchTimeout bounds a single pattern run. A rule that times out is
// skipped and the text it would have classified stays plain.
const DefaultMatchTimeout = 250 * time.Millisecond

var (
	compiledMu sync.Mutex
	compiled   []*regexp2.Regexp
)

func compile(pattern string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, opts)
	re.MatchTimeout = DefaultMatchTimeout
	compiledMu.Lock()
	compiled = append(compiled, re)
	compiledMu.Unlock()
	return re
}

// SetMatchTimeout changes the per-pattern timeout of every rule. It must be
// called before highlighting starts.
func SetMatchTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	compiledMu.Lock()
	defer compiledMu.Unlock()
	for _, re := range compiled {
		re.MatchTimeout = d
	}
}

// rule rewrites every match of re, protecting what it classifies.
type rule struct {
	re    *regexp2.Regexp
	apply func(m *regexp2.Match, a *arena) string
}

func (r rule) run(s string, a *arena) string {
	out, err := r.re.ReplaceFunc(s, func(m regexp2.Match) string {
		return r.apply(&m, a)
	}, -1, -1)
	if err != nil {
		return s
	}
	return out
}

// wrapRule classifies the whole match as class.
func wrapRule(pattern string, class TokenClass) rule {
	return rule{
		re: compile(pattern, regexp2.Multiline),
		apply: func(m *regexp2.Match, a *arena) string {
			return a.wrap(class, m.String())
		},
	}
}

// protectRule parks the match unclassified.
func protectRule(pattern string) rule {
	return rule{
		re: compile(pattern, regexp2.Multiline),
		apply: func(m *regexp2.Match, a *arena) string {
			return a.protect(m.String())
		},
	}
}

// namedRule classifies by whichever named group matched.
func namedRule(pattern string, classes map[string]TokenClass) rule {
	return rule{
		re: compile(pattern, regexp2.Multiline),
		apply: func(m *regexp2.Match, a *arena) string {
			for name, class := range classes {
				if g := m.GroupByName(name); g != nil && len(g.Captures) > 0 {
					return a.wrap(class, g.String())
				}
			}
			return m.String()
		},
	}
}

// keywords matches whole words that are not a member access.
func keywords(words string) string {
	return `(?<![.$])\b(?:` + words + `)\b`
}

func run(src string, rules []rule) string {
	a := &arena{}
	src = shieldPrivateUse(src, a.protect)
	for _, r := range rules {
		src = r.run(src, a)
	}
	return a.restore(src)
}

// group returns the text of capture n, or "" when it did not participate.
func group(m *regexp2.Match, n int) string {
	g := m.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return ""
	}
	return g.String()
}

// entityRule keeps escaped angle brackets and ampersands out of identifier rules.
var entityRule = protectRule(`&(?:lt|gt|amp);`)

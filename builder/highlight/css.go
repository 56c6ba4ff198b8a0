package highlight

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// CSS, SCSS and Less. Declaration blocks are classified as a unit so a
// value such as "a:hover" outside braces is never read as a declaration.
// Braces stay in the text, letting selector rules look ahead for "{".
var cssRules = []rule{
	namedRule(
		`(?<comment>/\*[\s\S]*?\*/)|(?<string>"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*')`,
		map[string]TokenClass{"comment": TokenComment, "string": TokenString}),
	entityRule,
	{
		re: compile(`\{([^{}]*)\}`, regexp2.None),
		apply: func(m *regexp2.Match, a *arena) string {
			return "{" + cssDeclarations(group(m, 1), a) + "}"
		},
	},
	wrapRule(`@[A-Za-z-]+`, TokenAtrule),
	wrapRule(`::[A-Za-z-]+`, TokenPseudoElement),
	wrapRule(`(?<!:):[A-Za-z-]+`, TokenPseudoClass),
	wrapRule(`(?<![\w-])\.[A-Za-z_-][\w-]*`, TokenCSSClass),
	wrapRule(`#[A-Za-z_-][\w-]*`, TokenCSSID),
	wrapRule(`\*`, TokenCSSUniversal),
	wrapRule(`(?<![\w-])[a-z][a-z0-9-]*(?=[^{};()]*\{)`, TokenCSSElement),
	wrapRule(`[{}();,]`, TokenPunctuation),
}

var (
	cssDeclRe = compile(`(-{0,2}[A-Za-z][-A-Za-z0-9]*)(\s*:)([^;]*)(;?)`, regexp2.None)
	cssValueRules = []rule{
		wrapRule(`!\s*important\b`, TokenImportant),
		wrapRule(`(?<![\w-])[A-Za-z-]+(?=\()`, TokenFunction),
		wrapRule(`#[0-9A-Fa-f]{3,8}\b`, TokenColor),
		{
			re: compile(`(?<![\w#.-])(-?(?:\d+\.?\d*|\.\d+))(px|em|rem|vh|vw|vmin|vmax|ms|s|deg|rad|turn|fr|ch|ex|pt|pc|cm|mm|in|%)?(?![\w%])`, regexp2.None),
			apply: func(m *regexp2.Match, a *arena) string {
				return a.protect(a.wrap(TokenNumber, group(m, 1)) + a.wrap(TokenUnit, group(m, 2)))
			},
		},
		wrapRule(keywords(`red|blue|green|white|black|gray|grey|orange|purple|yellow|pink|cyan|magenta|navy|teal|silver|gold|transparent|currentColor`), TokenColor),
		wrapRule(keywords(`inherit|initial|unset|revert|auto|none|normal|bold|solid|dashed|block|inline|flex|grid|absolute|relative|fixed|sticky|center|hidden`), TokenKeyword),
		wrapRule(`[(),/]`, TokenPunctuation),
	}
)

func cssDeclarations(body string, a *arena) string {
	if strings.TrimSpace(body) == "" {
		return body
	}
	out, err := cssDeclRe.ReplaceFunc(body, func(m regexp2.Match) string {
		prop, colon, value, semi := group(&m, 1), group(&m, 2), group(&m, 3), group(&m, 4)
		for _, r := range cssValueRules {
			value = r.run(value, a)
		}
		return a.wrap(TokenProperty, prop) + a.wrap(TokenPunctuation, colon) + value + a.wrap(TokenPunctuation, semi)
	}, -1, -1)
	if err != nil {
		return body
	}
	return a.protect(out)
}

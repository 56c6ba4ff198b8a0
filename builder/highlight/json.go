package highlight

var jsonRules = []rule{
	wrapRule(`"(?:\\.|[^"\\\n])*"(?=\s*:)`, TokenProperty),
	wrapRule(`"(?:\\.|[^"\\\n])*"`, TokenString),
	wrapRule(`//[^\n]*|/\*[\s\S]*?\*/`, TokenComment),
	entityRule,
	wrapRule(keywords(`true|false|null`), TokenBoolean),
	wrapRule(`-?\b\d+(?:\.\d+)?(?:[eE][+-]?\d+)?\b`, TokenNumber),
	wrapRule(`[{}\[\],:]`, TokenPunctuation),
}

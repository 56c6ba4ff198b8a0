package highlight

import "github.com/dlclark/regexp2"

// JavaScript and TypeScript, including JSX-flavoured React code.
//
// Priority: escaped entities; comments, strings, template literals and
// regex literals in one left-to-right pass; then numbers, booleans, the
// keyword groups, builtins, React types, hooks, function calls, PascalCase
// names and finally properties.
var jsRules = []rule{
	entityRule,
	namedRule(
		`(?<comment>//[^\n]*|/\*[\s\S]*?\*/)`+
			"|(?<template>`(?:\\\\[\\s\\S]|[^`\\\\])*`)"+
			`|(?<string>"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*')`+
			`|(?<regex>(?<=(?:^|[=(,:\[!|?{};]|\breturn)[ \t]*)/(?![*/])(?:\\.|\[(?:\\.|[^\]\\\n])*\]|[^/\\\n\[])+/[dgimsuy]*)`,
		map[string]TokenClass{
			"comment":  TokenComment,
			"template": TokenTemplateString,
			"string":   TokenString,
			"regex":    TokenRegex,
		}),
	wrapRule(`\b(?:0[xX][0-9a-fA-F_]+n?|0[bB][01_]+n?|0[oO][0-7_]+n?|\d[\d_]*(?:\.\d+)?(?:[eE][+-]?\d+)?n?)\b|(?<![\w$.])\.\d+(?:[eE][+-]?\d+)?\b`, TokenNumber),
	wrapRule(keywords(`true|false|null|undefined|NaN|Infinity`), TokenBoolean),
	reactImportRule,
	wrapRule(keywords(`import|export|from|as|default`), TokenImportKeyword),
	wrapRule(keywords(`const|let|var|function|class|interface|type|enum|abstract|declare|namespace|module`), TokenStorageKeyword),
	wrapRule(keywords(`if|else|for|while|do|switch|case|break|continue|return|try|catch|finally|throw|async|await`), TokenControlKeyword),
	wrapRule(keywords(`this|super|new|delete|typeof|instanceof|in|of`), TokenLanguageKeyword),
	wrapRule(keywords(`private|protected|public|readonly|static|extends|implements|get|set`), TokenModifierKeyword),
	wrapRule(keywords(`string|number|boolean|object|any|unknown|never|void|bigint|symbol|unique|asserts|infer|keyof|is|debugger|with|yield`), TokenTypeKeyword),
	reactTypeRule,
	wrapRule(keywords(`Array|Boolean|Date|Error|Function|JSON|Math|Number|Object|Promise|RegExp|String|Symbol|Map|Set|console|document|window|global|globalThis|process|Buffer|require|module|exports|__dirname|__filename`), TokenBuiltin),
	wrapRule(`\buse(?:State|Effect|Context|Reducer|Callback|Memo|Ref|ImperativeHandle|LayoutEffect|DebugValue|Transition|DeferredValue|Id|SyncExternalStore|Optimistic|ActionState)\b(?=(?:\s|[\uE100-\uE2FF])*\()`, TokenHook),
	wrapRule(`(?<![\w$])[A-Za-z_$][\w$]*(?=\s*\()`, TokenFunction),
	wrapRule(`(?<![\w$])[A-Z][\w$]*\b`, TokenClassName),
	wrapRule(`(?<=\.)[A-Za-z_$][\w$]*`, TokenProperty),
}

// reactImportRule marks the default React import. It runs before the
// import keywords so the lookbehind still sees the bare word.
var reactImportRule = rule{
	re: compile(`(?<=\bimport\s+)React\b`, regexp2.None),
	apply: func(m *regexp2.Match, a *arena) string {
		return a.wrap(TokenImportName, m.String())
	},
}

// reactTypeRule splits React.FC and friends into a type name and a type
// keyword before builtins and properties can claim either half.
var reactTypeRule = rule{
	re: compile(`\b(React)\.(FC|FunctionComponent|ReactNode|ReactElement|ComponentProps|PropsWithChildren|CSSProperties|ChangeEvent|MouseEvent|FormEvent)\b`, regexp2.None),
	apply: func(m *regexp2.Match, a *arena) string {
		return a.protect(a.wrap(TokenTypeName, group(m, 1)) + "." + a.wrap(TokenTypeKeyword, group(m, 2)))
	},
}

package highlight

// Python. Comments, docstrings, f-strings and plain strings share one
// alternation so whichever starts first wins.
var pyRules = []rule{
	namedRule(
		`(?<comment>#[^\n]*)`+
			`|(?<docstring>(?<![\w])[rRbBuU]?(?:"""[\s\S]*?"""|'''[\s\S]*?'''))`+
			`|(?<fstring>(?<![\w])(?:[fF][rR]?|[rR][fF])(?:"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'))`+
			`|(?<string>(?<![\w])(?:[rRbBuU]{1,2})?(?:"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'))`,
		map[string]TokenClass{
			"comment":   TokenComment,
			"docstring": TokenDocstring,
			"fstring":   TokenString,
			"string":    TokenString,
		}),
	entityRule,
	wrapRule(`(?<![\w)\]])@[A-Za-z_][\w.]*`, TokenDecorator),
	wrapRule(`\b(?:0[xX][0-9a-fA-F_]+|0[bB][01_]+|0[oO][0-7_]+|\d[\d_]*(?:\.\d*)?(?:[eE][+-]?\d+)?[jJ]?)\b|(?<![\w.])\.\d+(?:[eE][+-]?\d+)?[jJ]?\b`, TokenNumber),
	wrapRule(keywords(`True|False|None`), TokenBoolean),
	wrapRule(keywords(`and|as|assert|async|await|break|case|class|continue|def|del|elif|else|except|finally|for|from|global|if|import|in|is|lambda|match|nonlocal|not|or|pass|raise|return|try|while|with|yield`), TokenKeyword),
	wrapRule(keywords(`abs|all|any|ascii|bin|bool|breakpoint|bytearray|bytes|callable|chr|classmethod|compile|complex|delattr|dict|dir|divmod|enumerate|eval|exec|filter|float|format|frozenset|getattr|globals|hasattr|hash|help|hex|id|input|int|isinstance|issubclass|iter|len|list|locals|map|max|memoryview|min|next|object|oct|open|ord|pow|print|property|range|repr|reversed|round|set|setattr|slice|sorted|staticmethod|str|sum|super|tuple|type|vars|zip|__import__|self|cls`), TokenBuiltin),
	wrapRule(`(?<![\w])[A-Za-z_]\w*(?=\s*\()`, TokenFunction),
	wrapRule(`(?<![\w])[A-Z]\w*\b`, TokenClassName),
	wrapRule(`(?<=\.)[A-Za-z_]\w*`, TokenProperty),
}

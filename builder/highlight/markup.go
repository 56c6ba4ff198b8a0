package highlight

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// HTML, XML and SVG. Comments and doctypes are protected first, then the
// bodies of style and script elements, then tags with their attributes,
// then character references in text.
var markupRules = []rule{
	wrapRule(`&lt;!--[\s\S]*?--&gt;`, TokenComment),
	wrapRule(`&lt;!(?i:doctype)[\s\S]*?&gt;`, TokenDoctype),
	{
		re: compile(`(&lt;(style|script)\b(?:(?!&gt;)[\s\S])*?&gt;)([\s\S]*?)(?=&lt;/\2\s*&gt;)`, regexp2.IgnoreCase),
		apply: func(m *regexp2.Match, a *arena) string {
			return group(m, 1) + a.wrap(TokenPlainText, group(m, 3))
		},
	},
	{
		re:    compile(`&lt;(/?)([A-Za-z][\w:.-]*)((?:(?!&gt;)[\s\S])*?)(/?)&gt;`, regexp2.None),
		apply: markupTag,
	},
	wrapRule(`&amp;(?:[A-Za-z][A-Za-z0-9]*|#\d+|#[xX][0-9A-Fa-f]+);`, TokenEntity),
}

var tagGroups = map[string]TokenClass{}

func init() {
	groups := map[TokenClass]string{
		TokenHTMLStructure: "html head body header footer main nav section article aside",
		TokenHTMLContainer: "div span",
		TokenHTMLText:      "p h1 h2 h3 h4 h5 h6 strong em b i u s small mark code pre blockquote a br hr sup sub",
		TokenHTMLMedia:     "img video audio source picture svg canvas iframe figure figcaption",
		TokenHTMLForm:      "form input button select option textarea label fieldset legend",
		TokenHTMLTable:     "table thead tbody tfoot tr th td caption colgroup col",
		TokenHTMLList:      "ul ol li dl dt dd",
	}
	for class, names := range groups {
		for _, n := range strings.Fields(names) {
			tagGroups[n] = class
		}
	}
}

func tagClass(name string) TokenClass {
	if name[0] >= 'A' && name[0] <= 'Z' {
		return TokenComponent
	}
	if c, ok := tagGroups[strings.ToLower(name)]; ok {
		return c
	}
	return TokenTag
}

func markupTag(m *regexp2.Match, a *arena) string {
	closing, name, attrs, selfClose := group(m, 1), group(m, 2), group(m, 3), group(m, 4)

	class := "tag"
	if c := tagClass(name); c != TokenTag {
		class += " " + string(c)
	}

	var b strings.Builder
	b.WriteString(a.wrap(TokenPunctuation, "&lt;"+closing))
	b.WriteString(a.protect(`<span class="token ` + class + `">` + name + `</span>`))
	b.WriteString(markupAttrs(attrs, a))
	b.WriteString(a.wrap(TokenPunctuation, selfClose+"&gt;"))
	return a.protect(b.String())
}

var attrRe = compile(`(\s+)([^\s=/"']+)(?:(\s*=\s*)("[^"]*"|'[^']*'|[^\s"'=]+))?`, regexp2.None)

func markupAttrs(attrs string, a *arena) string {
	if strings.TrimSpace(attrs) == "" {
		return attrs
	}
	out, err := attrRe.ReplaceFunc(attrs, func(m regexp2.Match) string {
		ws, name, eq, val := group(&m, 1), group(&m, 2), group(&m, 3), group(&m, 4)
		key := strings.ToLower(name)

		nameClass := TokenAttrName
		switch key {
		case "class", "id":
			nameClass = TokenAttrSpecial
		case "href", "src", "alt", "title", "type", "name", "value", "placeholder":
			nameClass = TokenAttrImportant
		}

		s := ws + a.wrap(nameClass, name)
		if eq == "" {
			return s
		}
		return s + a.wrap(TokenPunctuation, eq) + attrValue(key, val, a)
	}, -1, -1)
	if err != nil {
		return attrs
	}
	return out
}

func attrValue(key, val string, a *arena) string {
	quote, inner := "", val
	if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') {
		quote, inner = val[:1], val[1:len(val)-1]
	}
	switch key {
	case "class":
		names := strings.Fields(inner)
		for i, n := range names {
			names[i] = a.wrap(TokenClassValue, n)
		}
		return a.wrap(TokenPunctuation, quote) + strings.Join(names, " ") + a.wrap(TokenPunctuation, quote)
	case "id":
		return a.wrap(TokenPunctuation, quote) + a.wrap(TokenIDValue, inner) + a.wrap(TokenPunctuation, quote)
	}
	return a.wrap(TokenAttrValue, val)
}

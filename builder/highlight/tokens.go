package highlight

import (
	"strings"

	"golang.org/x/net/html"
)

// CodeToken is one classified run of source text.
type CodeToken struct {
	Text  string     `json:"text"`
	Class TokenClass `json:"class"`
}

// Tokens highlights code and flattens the result into runs of unescaped
// text. Adjacent runs of the same class are merged. Nested spans report the
// innermost classification.
func (h *Highlighter) Tokens(code, lang string) []CodeToken {
	z := html.NewTokenizer(strings.NewReader(h.Highlight(code, lang)))
	stack := []TokenClass{TokenPlain}
	var out []CodeToken

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			class := TokenPlain
			for {
				key, val, more := z.TagAttr()
				if string(key) == "class" {
					class = lastClass(string(val))
				}
				if !more {
					break
				}
			}
			stack = append(stack, class)
		case html.EndTagToken:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case html.TextToken:
			text := string(z.Text())
			if text == "" {
				continue
			}
			class := stack[len(stack)-1]
			if n := len(out); n > 0 && out[n-1].Class == class {
				out[n-1].Text += text
				continue
			}
			out = append(out, CodeToken{Text: text, Class: class})
		}
	}
}

// lastClass picks the most specific word of a "token a b" class list.
func lastClass(attr string) TokenClass {
	f := strings.Fields(attr)
	if len(f) == 0 || (len(f) == 1 && f[0] == "token") {
		return TokenPlain
	}
	return TokenClass(f[len(f)-1])
}

package highlight

import (
	"strings"
	"unicode/utf8"
)

// Placeholder alphabet. Indices are written in base 256 with one Private
// Use Area rune per digit, so no rule pattern (word characters, digits,
// punctuation, entities) can match inside a placeholder.
const (
	tokenOpen  = '\uE100'
	tokenClose = '\uE101'
	digitBase  = 0xE200
)

// arena holds the classified fragments of one highlight call.
type arena struct {
	items []string
}

func token(n int) string {
	var b strings.Builder
	b.WriteRune(tokenOpen)
	for {
		b.WriteRune(rune(digitBase + n%256))
		n /= 256
		if n == 0 {
			break
		}
	}
	b.WriteRune(tokenClose)
	return b.String()
}

// protect stores an HTML fragment and returns its placeholder.
func (a *arena) protect(fragment string) string {
	n := len(a.items)
	a.items = append(a.items, fragment)
	return token(n)
}

// wrap stores text as a token span of class.
func (a *arena) wrap(class TokenClass, text string) string {
	if text == "" {
		return ""
	}
	return a.protect(span(class, text))
}

func span(class TokenClass, text string) string {
	return `<span class="token ` + string(class) + `">` + text + `</span>`
}

// restore expands placeholders. A fragment only ever contains placeholders
// created before it, so expanding depth-first yields the same result as
// replacing newest first, in a single pass over the output.
func (a *arena) restore(s string) string {
	if len(a.items) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) * 2)
	a.expand(&b, s, len(a.items))
	return b.String()
}

func (a *arena) expand(b *strings.Builder, s string, limit int) {
	for len(s) > 0 {
		i := strings.IndexRune(s, tokenOpen)
		if i < 0 {
			b.WriteString(s)
			return
		}
		b.WriteString(s[:i])
		s = s[i+utf8.RuneLen(tokenOpen):]

		n, mul, ok := 0, 1, false
		for len(s) > 0 {
			r, size := utf8.DecodeRuneInString(s)
			s = s[size:]
			if r == tokenClose {
				ok = true
				break
			}
			if r < digitBase || r > digitBase+255 {
				break
			}
			n += int(r-digitBase) * mul
			mul *= 256
		}
		if !ok || n >= limit {
			// a malformed placeholder cannot come from this arena
			continue
		}
		a.expand(b, a.items[n], n)
	}
}

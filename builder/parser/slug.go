package parser

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

var lowerCaser = cases.Lower(language.Und)

// Slug derives the anchor id for a heading title.
//
// The title is NFKC-normalised (folding half-width kana and full-width
// ASCII) and lower-cased. Word characters, Japanese kana and kanji survive;
// every other rune is dropped. Whitespace and hyphen runs collapse to a
// single hyphen and leading or trailing hyphens are trimmed, so a title made
// only of punctuation yields "".
func Slug(title string) string {
	if title == "" {
		return ""
	}
	s := lowerCaser.String(norm.NFKC.String(title))

	var b strings.Builder
	b.Grow(len(s))
	sep := false
	for _, r := range s {
		switch {
		case r == '-' || unicode.IsSpace(r):
			sep = b.Len() > 0
		case slugRune(r):
			if sep {
				b.WriteByte('-')
				sep = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func slugRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= 0x3005 && r <= 0x3007: // 々 〆 〇
		return true
	case r >= 0x3040 && r <= 0x309F: // hiragana
		return true
	case r >= 0x30A0 && r <= 0x30FF: // katakana
		return true
	case r >= 0x3400 && r <= 0x4DBF: // CJK extension A
		return true
	case r >= 0x4E00 && r <= 0x9FFF: // CJK unified ideographs
		return true
	}
	return false
}

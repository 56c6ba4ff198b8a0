package content

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ValidCategories are the English category names posts may use.
var ValidCategories = []string{
	"Programming",
	"Web Development",
	"Frontend Development",
	"Mathematics",
	"Machine Learning",
	"Apple",
	"Design",
	"DevOps",
	"Database",
	"Security",
	"Mobile Development",
	"Backend Development",
}

var spaceRe = regexp.MustCompile(`\s+`)

func urlSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = spaceRe.ReplaceAllString(s, "-")
	return strings.ReplaceAll(s, ".", "-")
}

// CategorySlug turns "Web Development" into "web-development".
func CategorySlug(name string) string { return urlSlug(name) }

// TagSlug turns "Next.js" into "next-js".
func TagSlug(name string) string { return urlSlug(name) }

var titleCaser = cases.Title(language.Und, cases.NoLower)

// CategoryDisplayName reverses CategorySlug by capitalising each word.
func CategoryDisplayName(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// TagDisplayName keeps the tag slug as it is.
func TagDisplayName(slug string) string { return slug }

func IsValidCategory(name string) bool {
	for _, c := range ValidCategories {
		if c == name {
			return true
		}
	}
	return false
}

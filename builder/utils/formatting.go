package utils

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/harunosuke/web/builder/models"
)

// SortPosts orders newest first, breaking ties by title.
func SortPosts(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].DateObj.Equal(posts[j].DateObj) {
			return posts[i].Title < posts[j].Title
		}
		return posts[i].DateObj.After(posts[j].DateObj)
	})
}

// ReadTime estimates minutes to read text at perMinute characters a
// minute, rounding up.
func ReadTime(text string, perMinute int) int {
	if perMinute <= 0 {
		perMinute = 200
	}
	n := utf8.RuneCountInString(text)
	return (n + perMinute - 1) / perMinute
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006/01/02",
}

// ParseDate accepts the date forms used in frontmatter.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

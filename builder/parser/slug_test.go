package parser

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"", ""},
		{"Title", "title"},
		{"日本語の見出し", "日本語の見出し"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"a -- b", "a-b"},
		{"snake_case name", "snake_case-name"},
		{"ＡＢＣ１２３", "abc123"},
		{"ｶﾀｶﾅ", "カタカナ"},
		{"Go 1.22 リリース", "go-122-リリース"},
		{"!!!", ""},
		{"--- dashes ---", "dashes"},
		{"What's new?", "whats-new"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := Slug(tt.title); got != tt.want {
				t.Errorf("Slug(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugDeterministic(t *testing.T) {
	for _, title := range []string{"Hello, World!", "数式 と コード", "Mixed CASE_words 42"} {
		if Slug(title) != Slug(title) {
			t.Errorf("Slug(%q) is not deterministic", title)
		}
	}
}

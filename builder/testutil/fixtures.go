// Package testutil provides testing utilities and fixtures
package testutil

import (
	"fmt"
	"strings"
)

// SamplePost is a complete post with every kind of protected span.
const SamplePost = `---
title: "Rendering Math and Code"
date: "2024-03-15"
excerpt: "How posts are rendered."
category: "Programming"
tags: ["go", "Next.js"]
---

Intro with $E = mc^2$ inline and ` + "`x := 1`" + ` code.

## Setup

Install **everything** first.

` + "```js\nconst answer = 42;\n```" + `

## Display Math

$$
\int_0^1 x\,dx
$$

### 日本語の見出し

> quoted *text*
`

// PostFile renders a markdown file with the given frontmatter fields.
// Values are written as YAML scalars; a []string becomes a flow sequence.
func PostFile(fields map[string]interface{}, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	for _, key := range []string{"title", "date", "excerpt", "author", "category", "tags", "image", "draft"} {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case []string:
			quoted := make([]string, len(val))
			for i, s := range val {
				quoted[i] = fmt.Sprintf("%q", s)
			}
			fmt.Fprintf(&b, "%s: [%s]\n", key, strings.Join(quoted, ", "))
		case string:
			fmt.Fprintf(&b, "%s: %q\n", key, val)
		default:
			fmt.Fprintf(&b, "%s: %v\n", key, val)
		}
	}
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

// SamplePosts returns a small content directory keyed by path.
func SamplePosts(dir string) map[string]string {
	return map[string]string{
		dir + "/rendering.md": SamplePost,
		dir + "/older.md": PostFile(map[string]interface{}{
			"title":    "Older Post",
			"date":     "2023-01-10",
			"category": "Web Development",
			"tags":     []string{"go"},
		}, "## First\n\nSome text.\n"),
		dir + "/draft.md": PostFile(map[string]interface{}{
			"title": "Work in Progress",
			"date":  "2024-06-01",
			"draft": true,
		}, "Not yet.\n"),
	}
}

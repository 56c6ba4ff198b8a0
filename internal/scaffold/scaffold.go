// Package scaffold creates a new site: site.yaml and a first post.
package scaffold

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const siteYAML = `# サイト設定
title: "はるのすけのブログ"
description: "プログラミングと数学の覚え書き"
baseURL: "http://localhost:2604"
language: "ja"
author: "はるのすけ"

contentDir: "posts"
outputDir: "public"
postsPerPage: 5
featuredCount: 3
rssLimit: 20

# 記事HTMLを bluemonday で無害化する
sanitize: false

theme:
  default: "light"

# katex.min.js を指定するとビルド時に数式を描画する
math:
  katex: ""

highlight:
  guess: true

toc:
  minLevel: 2
  maxLevel: 6
`

const firstPost = "---\n" +
	"title: \"はじめての投稿\"\n" +
	"date: \"%s\"\n" +
	"category: \"Programming\"\n" +
	"tags: [\"go\", \"welcome\"]\n" +
	"---\n" +
	`
ブログへようこそ。この記事は ` + "`posts/hello-world.md`" + ` にあります。

## コードを書く

` + "```go" + `
package main

import "fmt"

func main() {
	fmt.Println("こんにちは")
}
` + "```" + `

## 数式を書く

インライン数式は $E = mc^2$ のように書きます。

$$
\int_0^1 x^2 \, dx = \frac{1}{3}
$$

## 次のステップ

` + "`harunosuke serve`" + ` で開発サーバーを起動できます。
`

// Init writes site.yaml and posts/hello-world.md under root. Existing files
// are left alone and reported as skipped.
func Init(fs afero.Fs, root string, now time.Time, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	files := []struct {
		name string
		data string
	}{
		{"site.yaml", siteYAML},
		{filepath.Join("posts", "hello-world.md"), fmt.Sprintf(firstPost, now.Format("2006-01-02"))},
	}

	for _, dir := range []string{"posts", "public"} {
		if err := fs.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Info("   📁 Created", "dir", dir+"/")
	}

	for _, f := range files {
		path := filepath.Join(root, f.name)
		if ok, _ := afero.Exists(fs, path); ok {
			logger.Warn("   ⚠️  Already exists, skipping", "file", f.name)
			continue
		}
		if err := afero.WriteFile(fs, path, []byte(f.data), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", f.name, err)
		}
		logger.Info("   📄 Created", "file", f.name)
	}
	return nil
}

// Run initializes a site in the current directory.
func Run(logger *slog.Logger) error {
	logger.Info("🌱 Initializing new site...")
	if err := Init(afero.NewOsFs(), ".", time.Now(), logger); err != nil {
		return err
	}
	logger.Info("✅ Site initialized. Run `harunosuke serve` to preview it.")
	return nil
}

// Package config loads site settings from site.yaml and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig reports a site.yaml that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

const DefaultConfigFile = "site.yaml"

type Config struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"baseURL"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
	Image       string `yaml:"image"`

	ContentDir    string `yaml:"contentDir"`
	OutputDir     string `yaml:"outputDir"`
	PostsPerPage  int    `yaml:"postsPerPage"`
	FeaturedCount int    `yaml:"featuredCount"`
	RSSLimit      int    `yaml:"rssLimit"`

	// Sanitize filters rendered article HTML through a user-content policy.
	Sanitize bool `yaml:"sanitize"`

	Theme     ThemeConfig     `yaml:"theme"`
	Math      MathConfig      `yaml:"math"`
	Highlight HighlightConfig `yaml:"highlight"`
	TOC       TOCConfig       `yaml:"toc"`

	// Set from flags only.
	Drafts         bool      `yaml:"-"`
	CompressOutput bool      `yaml:"-"`
	ConfigFile     string    `yaml:"-"`
	BuildVersion   int64     `yaml:"-"`
	BuildTime      time.Time `yaml:"-"`

	Build *BuildConfig `yaml:"-"`
}

type ThemeConfig struct {
	Default string `yaml:"default"` // "light" or "dark"
}

type MathConfig struct {
	// KaTeX is the path of katex.min.js for server-side rendering. Empty
	// leaves math escaped for the client to typeset.
	KaTeX string `yaml:"katex"`
}

type HighlightConfig struct {
	Guess bool `yaml:"guess"`
}

type TOCConfig struct {
	MinLevel int `yaml:"minLevel"`
	MaxLevel int `yaml:"maxLevel"`
}

func Default() *Config {
	return &Config{
		Title:         "はるのすけのブログ",
		Description:   "プログラミングと数学の覚え書き",
		Language:      "ja",
		Author:        "はるのすけ",
		Image:         "https://images.unsplash.com/photo-1499951360447-b19be8fe80f5?w=800&h=400&fit=crop&crop=smart",
		ContentDir:    "posts",
		OutputDir:     "public",
		PostsPerPage:  5,
		FeaturedCount: 3,
		RSSLimit:      20,
		Theme:         ThemeConfig{Default: "light"},
		TOC:           TOCConfig{MinLevel: 2, MaxLevel: 6},
	}
}

// Load parses args, reads the config file they name and applies flag
// overrides on top. A missing default config file is not an error. extra
// registers command-specific flags on the same set before parsing.
func Load(args []string, extra ...func(*flag.FlagSet)) (*Config, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	configFile := fs.StringP("config", "c", DefaultConfigFile, "site config file")
	baseURL := fs.String("baseurl", "", "override the base URL")
	outDir := fs.StringP("out", "o", "", "output directory")
	drafts := fs.Bool("drafts", false, "include draft posts")
	compress := fs.Bool("compress", false, "minify HTML, CSS and JS output")
	for _, register := range extra {
		register(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := Default()
	data, err := os.ReadFile(*configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, *configFile, err)
		}
	case os.IsNotExist(err) && !fs.Changed("config"):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", *configFile, err)
	}

	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	cfg.Drafts = *drafts
	cfg.CompressOutput = *compress
	cfg.ConfigFile = *configFile
	cfg.BuildTime = time.Now()
	cfg.BuildVersion = cfg.BuildTime.Unix()
	cfg.Build = LoadBuildConfig(BuildConfigFile)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidConfig)
	}
	if c.PostsPerPage < 1 {
		c.PostsPerPage = 1
	}
	if c.FeaturedCount < 0 {
		c.FeaturedCount = 0
	}
	if c.RSSLimit < 1 {
		c.RSSLimit = 1
	}
	switch c.Theme.Default {
	case "light", "dark":
	default:
		return fmt.Errorf("%w: theme.default must be light or dark, got %q", ErrInvalidConfig, c.Theme.Default)
	}
	if c.TOC.MinLevel < 1 {
		c.TOC.MinLevel = 1
	}
	if c.TOC.MaxLevel > 6 || c.TOC.MaxLevel < c.TOC.MinLevel {
		c.TOC.MaxLevel = 6
	}
	return nil
}

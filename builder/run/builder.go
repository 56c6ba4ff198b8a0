package run

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/assets"
	"github.com/harunosuke/web/builder/config"
	"github.com/harunosuke/web/builder/highlight"
	"github.com/harunosuke/web/builder/parser"
	"github.com/harunosuke/web/builder/renderer"
	"github.com/harunosuke/web/builder/renderer/native"
)

// Builder maintains the state for site builds
type Builder struct {
	cfg      *config.Config
	pipeline *parser.Pipeline
	rnd      *renderer.Renderer
	math     *native.Renderer
	logger   *slog.Logger

	liveReload bool

	SourceFs afero.Fs
	DestFs   afero.Fs
}

type Option func(*Builder)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) { b.logger = logger }
}

// WithLiveReload makes every page subscribe to the dev server's event stream.
func WithLiveReload(on bool) Option {
	return func(b *Builder) { b.liveReload = on }
}

// NewBuilder wires the markdown pipeline, the math typesetter and the page
// renderer for cfg. Posts are read from sourceFs and pages written to destFs.
func NewBuilder(cfg *config.Config, sourceFs, destFs afero.Fs, opts ...Option) (*Builder, error) {
	if cfg.Build == nil {
		cfg.Build = config.DefaultBuildConfig()
	}
	b := &Builder{
		cfg:      cfg,
		SourceFs: sourceFs,
		DestFs:   destFs,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}

	highlight.SetMatchTimeout(cfg.Build.RegexMatchTimeout)

	if cfg.Math.KaTeX != "" {
		m, err := native.New(sourceFs, cfg.Math.KaTeX, cfg.Build.DefaultWorkers, b.logger)
		if err != nil {
			b.logger.Warn("⚠️  KaTeX not loaded, math stays client-side", "path", cfg.Math.KaTeX, "error", err)
		} else {
			b.math = m
		}
	}

	popts := []parser.Option{
		parser.WithHighlighter(highlight.New(
			highlight.WithGuess(cfg.Highlight.Guess),
			highlight.WithLogger(b.logger),
		)),
		parser.WithLogger(b.logger),
	}
	if b.math != nil {
		popts = append(popts, parser.WithTypesetter(b.math))
	}
	if cfg.Sanitize {
		popts = append(popts, parser.WithSanitizer(parser.NewSanitizer()))
	}
	b.pipeline = parser.New(popts...)

	rnd, err := renderer.New(assets.Templates(), destFs, cfg.CompressOutput, b.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	b.rnd = rnd
	return b, nil
}

// Config returns the builder's configuration
func (b *Builder) Config() *config.Config {
	return b.cfg
}

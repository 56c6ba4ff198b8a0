package run

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/config"
)

// Run loads configuration from args and builds the site on the local disk.
func Run(ctx context.Context, args []string, logger *slog.Logger) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	osFs := afero.NewOsFs()
	b, err := NewBuilder(cfg, osFs, osFs, WithLogger(logger))
	if err != nil {
		return err
	}
	m, err := b.Build(ctx)
	if err != nil {
		return err
	}
	if m.Failures() > 0 {
		logger.Warn("⚠️  Some pages failed to render", "count", m.Failures())
	}
	return nil
}

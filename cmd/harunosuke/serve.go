package main

import (
	"context"
	"log/slog"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/harunosuke/web/builder/config"
	"github.com/harunosuke/web/builder/run"
	"github.com/harunosuke/web/internal/build"
	"github.com/harunosuke/web/internal/server"
	"github.com/harunosuke/web/internal/watch"
)

func serveFlags(host, port *string) func(*flag.FlagSet) {
	return func(fs *flag.FlagSet) {
		fs.StringVar(host, "host", "localhost", "dev server host")
		fs.StringVarP(port, "port", "p", "2604", "dev server port")
	}
}

// outputDir resolves the output directory the same way build does,
// tolerating the serve-only flags.
func outputDir(args []string) (string, error) {
	var host, port string
	cfg, err := config.Load(args, serveFlags(&host, &port))
	if err != nil {
		return "", err
	}
	return cfg.OutputDir, nil
}

func serve(ctx context.Context, args []string, logger *slog.Logger) error {
	var host, port string
	cfg, err := config.Load(args, serveFlags(&host, &port))
	if err != nil {
		return err
	}

	osFs := afero.NewOsFs()
	b, err := run.NewBuilder(cfg, osFs, osFs, run.WithLogger(logger), run.WithLiveReload(true))
	if err != nil {
		return err
	}
	if _, err := b.Build(ctx); err != nil {
		return err
	}
	if err := build.WASM(ctx, cfg.OutputDir, logger); err != nil {
		logger.Warn("⚠️  TOC WASM unavailable", "error", err)
	}

	srv := server.New(server.Options{
		Host:            host,
		Port:            port,
		Root:            cfg.OutputDir,
		ShutdownTimeout: cfg.Build.ShutdownTimeout,
		Logger:          logger,
	})

	onChange := func(e watch.Event) {
		logger.Info("🔄 Change detected, rebuilding", "file", e.Name)
		m, err := b.Build(ctx)
		if err != nil {
			logger.Error("❌ Rebuild failed", "error", err)
			return
		}
		logger.Debug(m.String())
		srv.Reload()
	}
	w, err := watch.New([]string{cfg.ContentDir}, cfg.Build.DebounceDuration, onChange, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	g.Go(func() error { return w.Run(gctx) })
	return g.Wait()
}

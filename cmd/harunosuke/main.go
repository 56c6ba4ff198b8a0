package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/harunosuke/web/builder/run"
	"github.com/harunosuke/web/internal/build"
	"github.com/harunosuke/web/internal/clean"
	"github.com/harunosuke/web/internal/new"
	"github.com/harunosuke/web/internal/scaffold"
	"github.com/harunosuke/web/internal/version"
)

func main() {
	args, verbose := stripVerbose(os.Args[1:])
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "build":
		err = buildSite(ctx, rest, logger)
	case "serve":
		err = serve(ctx, rest, logger)
	case "new":
		err = new.Run(rest, logger)
	case "clean":
		err = clean.Run(rest, logger)
	case "init":
		err = scaffold.Run(logger)
	case "version":
		version.Read().Print(os.Stdout, verbose)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("❌ "+command+" failed", "error", err)
		os.Exit(1)
	}
}

func buildSite(ctx context.Context, args []string, logger *slog.Logger) error {
	if err := run.Run(ctx, args, logger); err != nil {
		return err
	}
	return buildWASM(ctx, args, logger)
}

// buildWASM compiles the TOC controller next to the built site. A machine
// without a Go toolchain still gets a working site, just without the
// scroll-synced TOC.
func buildWASM(ctx context.Context, args []string, logger *slog.Logger) error {
	out, err := outputDir(args)
	if err != nil {
		return err
	}
	err = build.WASM(ctx, out, logger)
	if errors.Is(err, build.ErrNoToolchain) || errors.Is(err, build.ErrNoSource) {
		logger.Warn("⚠️  Skipping TOC WASM", "reason", err)
		return nil
	}
	return err
}

// stripVerbose removes --verbose/-v wherever it appears so subcommand flag
// sets never see it.
func stripVerbose(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	verbose := false
	for _, a := range args {
		if a == "--verbose" || a == "-v" {
			verbose = true
			continue
		}
		out = append(out, a)
	}
	return out, verbose
}

func printUsage() {
	fmt.Println("Usage: harunosuke <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  build          Build the static site (and TOC WASM)")
	fmt.Println("  serve          Build, watch and preview with live reload")
	fmt.Println("  new <title>    Create a new post")
	fmt.Println("  clean          Remove the output directory")
	fmt.Println("  init           Create site.yaml and a first post")
	fmt.Println("  version        Print build information")
	fmt.Println("  help           Show this help message")
	fmt.Println("\nFlags for build and serve:")
	fmt.Println("  -c, --config   Site config file (default site.yaml)")
	fmt.Println("  -o, --out      Output directory")
	fmt.Println("  --baseurl      Override the base URL")
	fmt.Println("  --drafts       Include draft posts")
	fmt.Println("  --compress     Minify HTML, CSS and JS")
	fmt.Println("  --host, -p     Dev server host and port (serve only)")
	fmt.Println("  -v, --verbose  Debug logging")
}

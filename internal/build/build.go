// Package build compiles the in-browser TOC controller to WebAssembly.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrNoToolchain is returned when no go binary is on PATH.
	ErrNoToolchain = errors.New("go toolchain not found")
	// ErrNoSource is returned outside a checkout that contains cmd/toc.
	ErrNoSource = errors.New("toc wasm sources not found")
)

// Sources are the packages compiled into toc.wasm.
var Sources = []string{"cmd/toc", "builder/toc"}

const (
	wasmPath     = "static/wasm/toc.wasm"
	wasmExecPath = "static/js/wasm_exec.js"
)

// WASM builds ./cmd/toc for js/wasm into outDir and copies the matching
// wasm_exec.js next to the site scripts. The build is skipped while the
// output is newer than every source file.
func WASM(ctx context.Context, outDir string, logger *slog.Logger) error {
	goBin, err := exec.LookPath("go")
	if err != nil {
		return ErrNoToolchain
	}
	if _, err := os.Stat(Sources[0]); err != nil {
		return ErrNoSource
	}

	out := filepath.Join(outDir, wasmPath)
	if upToDate(out, Sources) {
		logger.Debug("toc wasm up to date", "path", out)
	} else {
		if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
			return fmt.Errorf("failed to create wasm directory: %w", err)
		}
		logger.Info("🚀 Building TOC WASM...")
		start := time.Now()
		cmd := exec.CommandContext(ctx, goBin, "build", "-ldflags=-s -w", "-o", out, "./cmd/toc")
		cmd.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("wasm build failed: %w: %s", err, strings.TrimSpace(stderr.String()))
		}
		logger.Info("✅ WASM build complete", "elapsed", time.Since(start))
	}

	goroot, err := exec.CommandContext(ctx, goBin, "env", "GOROOT").Output()
	if err != nil {
		return fmt.Errorf("go env GOROOT: %w", err)
	}
	src, err := findWasmExec(strings.TrimSpace(string(goroot)))
	if err != nil {
		return err
	}
	return copyFile(src, filepath.Join(outDir, wasmExecPath))
}

// findWasmExec locates wasm_exec.js; Go 1.24 moved it from misc/wasm to
// lib/wasm.
func findWasmExec(goroot string) (string, error) {
	for _, dir := range []string{"lib/wasm", "misc/wasm"} {
		p := filepath.Join(goroot, dir, "wasm_exec.js")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("wasm_exec.js not found under %s", goroot)
}

func upToDate(out string, sources []string) bool {
	info, err := os.Stat(out)
	if err != nil {
		return false
	}
	built := info.ModTime()
	stale := false
	for _, dir := range sources {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || stale {
				return filepath.SkipAll
			}
			if d.IsDir() || !strings.HasSuffix(path, ".go") {
				return nil
			}
			if fi, err := d.Info(); err == nil && fi.ModTime().After(built) {
				stale = true
			}
			return nil
		})
	}
	return !stale
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(dst), err)
	}
	return os.WriteFile(dst, data, 0644)
}

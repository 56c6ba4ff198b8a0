// Package clean removes the generated site.
package clean

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/config"
)

const trashMarker = "_deleting_"

// Remove renames dir to a sibling trash name and deletes it in the
// background. Trash left by an interrupted earlier run is swept as well.
// The returned channel is closed once everything is gone. A missing dir is
// not an error.
func Remove(fs afero.Fs, dir string, logger *slog.Logger) (<-chan struct{}, error) {
	done := make(chan struct{})
	if logger == nil {
		logger = slog.Default()
	}

	parent, base := filepath.Dir(dir), filepath.Base(dir)
	if base == "." || base == string(filepath.Separator) {
		return nil, fmt.Errorf("refusing to remove %q", dir)
	}
	trash := staleTrash(fs, parent, base)

	if ok, _ := afero.DirExists(fs, dir); ok {
		tmp := filepath.Join(parent, fmt.Sprintf("%s%s%d", base, trashMarker, time.Now().UnixNano()))
		logger.Info("🧹 Moving output to trash", "dir", dir)
		if err := fs.Rename(dir, tmp); err != nil {
			logger.Warn("⚠️  Rename failed, deleting synchronously", "error", err)
			if err := fs.RemoveAll(dir); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", dir, err)
			}
		} else {
			trash = append(trash, tmp)
		}
	}

	go func() {
		defer close(done)
		for _, p := range trash {
			if err := fs.RemoveAll(p); err != nil {
				logger.Warn("failed to delete trash", "path", p, "error", err)
			}
		}
	}()
	return done, nil
}

func staleTrash(fs afero.Fs, parent, base string) []string {
	entries, err := afero.ReadDir(fs, parent)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), base+trashMarker) {
			out = append(out, filepath.Join(parent, e.Name()))
		}
	}
	return out
}

// Run removes the configured output directory.
func Run(args []string, logger *slog.Logger) error {
	start := time.Now()
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	done, err := Remove(afero.NewOsFs(), cfg.OutputDir, logger)
	if err != nil {
		return err
	}
	logger.Info("🧹 Clean initiated", "dir", cfg.OutputDir, "elapsed", time.Since(start))
	<-done
	return nil
}

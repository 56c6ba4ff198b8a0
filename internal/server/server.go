// Package server serves the built site with live reload.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
)

type Options struct {
	Host            string
	Port            string
	Root            string // directory to serve
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// Server is the development preview server.
type Server struct {
	opts   Options
	hub    *Hub
	files  http.Handler
	logger *slog.Logger
}

func New(opts Options) *Server {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	if opts.Port == "" {
		opts.Port = "2604"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	_ = mime.AddExtensionType(".wasm", "application/wasm")

	return &Server{
		opts:   opts,
		hub:    NewHub(),
		files:  http.FileServer(http.Dir(opts.Root)),
		logger: opts.Logger,
	}
}

// Addr returns host:port.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, s.opts.Port)
}

// Reload tells every open page to refresh.
func (s *Server) Reload() {
	s.hub.Broadcast()
}

// Handler returns the routes: /events for live reload and compressed files
// for everything else.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/events", s.hub)
	mux.Handle("/", gzhttp.GzipHandler(http.HandlerFunc(s.serveFile)))
	return mux
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	normalized := normalizeRequestPath(r.URL.Path)

	fullPath, err := validatePath(s.opts.Root, normalized)
	if err != nil {
		s.logger.Warn("rejected request path", "path", r.URL.Path, "error", err)
		http.Error(w, "403 - Forbidden: Invalid path", http.StatusForbidden)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			s.notFound(w)
			return
		}
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return
	}

	filename := filepath.Base(normalized)
	switch {
	case isHashedAsset(filename):
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	case info.IsDir() || strings.HasSuffix(filename, ".html"):
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
	default:
		w.Header().Set("Cache-Control", "public, max-age=60")
	}

	s.files.ServeHTTP(w, r)
}

func (s *Server) notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if content, err := os.ReadFile(filepath.Join(s.opts.Root, "404.html")); err == nil {
		_, _ = w.Write(content)
		return
	}
	_, _ = w.Write([]byte("404 - Page Not Found"))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	fmt.Printf("🌍 Serving on http://%s\n", s.Addr())
	if s.opts.Host == "0.0.0.0" {
		fmt.Println("   (Accessible on your local network)")
	}
	fmt.Println("   (Auto-reload enabled via /events)")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Println("\n🛑 Shutting down HTTP server...")
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	fmt.Println("✅ Server stopped.")
	return nil
}

// Package native typesets LaTeX at build time by running KaTeX inside goja.
package native

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/dop251/goja"
	"github.com/spf13/afero"

	"github.com/harunosuke/web/builder/utils"
)

// ErrUnavailable is returned by RenderMath when no KaTeX script was loaded.
var ErrUnavailable = errors.New("katex unavailable")

// instance is one isolated VM. goja runtimes are not safe for concurrent
// use, so each render borrows one from the pool.
type instance struct {
	vm       *goja.Runtime
	katex    goja.Value
	renderFn goja.Callable
}

// Renderer manages a pool of KaTeX VMs. The zero value is unavailable.
type Renderer struct {
	prog    *goja.Program
	pool    chan *instance
	workers int
	logger  *slog.Logger

	initOnce sync.Once
	initErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// New compiles the KaTeX script at path. An empty path yields a renderer
// that reports itself unavailable.
func New(fs afero.Fs, path string, workers int, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	r := &Renderer{workers: workers, logger: logger, cache: map[string]string{}}
	if path == "" {
		return r, nil
	}

	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read katex script: %w", err)
	}
	return r, r.compile(path, string(src))
}

// NewFromSource is New for an in-memory script.
func NewFromSource(name, src string, workers int) (*Renderer, error) {
	r, _ := New(nil, "", workers, nil)
	return r, r.compile(name, src)
}

func (r *Renderer) compile(name, src string) error {
	prog, err := goja.Compile(name, src, true)
	if err != nil {
		return fmt.Errorf("failed to compile katex: %w", err)
	}
	r.prog = prog
	r.pool = make(chan *instance, r.workers)
	return nil
}

// Available reports whether a script was loaded.
func (r *Renderer) Available() bool {
	return r != nil && r.prog != nil
}

func (r *Renderer) ensureInitialized() error {
	r.initOnce.Do(func() {
		r.logger.Debug("initializing katex pool", "workers", r.workers)
		for i := 0; i < r.workers; i++ {
			inst, err := newInstance(r.prog)
			if err != nil {
				r.initErr = err
				return
			}
			r.pool <- inst
		}
	})
	return r.initErr
}

func newInstance(prog *goja.Program) (*instance, error) {
	vm := goja.New()

	console := vm.NewObject()
	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	_ = console.Set("log", noop)
	_ = console.Set("warn", noop)
	_ = console.Set("error", noop)
	_ = vm.Set("console", console)

	document := vm.NewObject()
	_ = document.Set("createElement", func(call goja.FunctionCall) goja.Value {
		elem := vm.NewObject()
		_ = elem.Set("setAttribute", noop)
		return elem
	})
	_ = vm.Set("document", document)

	if _, err := vm.RunProgram(prog); err != nil {
		return nil, fmt.Errorf("failed to load katex: %w", err)
	}

	katex := vm.Get("katex")
	if katex == nil || goja.IsUndefined(katex) {
		return nil, fmt.Errorf("katex not found in VM")
	}
	renderFn, ok := goja.AssertFunction(katex.ToObject(vm).Get("renderToString"))
	if !ok {
		return nil, fmt.Errorf("katex.renderToString is not a function")
	}
	return &instance{vm: vm, katex: katex, renderFn: renderFn}, nil
}

// RenderMath renders one expression to HTML. Results are cached by
// content and display mode.
func (r *Renderer) RenderMath(latex string, displayMode bool) (string, error) {
	if !r.Available() {
		return "", ErrUnavailable
	}

	mode := "math-inline"
	if displayMode {
		mode = "math-display"
	}
	key := utils.HashContent(mode, latex)
	r.mu.RLock()
	if html, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return html, nil
	}
	r.mu.RUnlock()

	if err := r.ensureInitialized(); err != nil {
		return "", err
	}

	inst := <-r.pool
	defer func() { r.pool <- inst }()

	opts := inst.vm.NewObject()
	_ = opts.Set("displayMode", displayMode)
	_ = opts.Set("throwOnError", false)
	_ = opts.Set("output", "html")

	result, err := inst.renderFn(inst.katex, inst.vm.ToValue(latex), opts)
	if err != nil {
		return "", fmt.Errorf("katex render failed: %w", err)
	}

	html := result.String()
	r.mu.Lock()
	r.cache[key] = html
	r.mu.Unlock()
	return html, nil
}

package toc

import (
	"log/slog"
	"sync"
	"time"
)

// Signals delivers scroll and resize notifications. Subscribe returns a
// function that removes the listener.
type Signals interface {
	Subscribe(fn func()) (unsubscribe func())
}

// Geometry reports an element's rect. ok is false when the element is not
// in the document yet.
type Geometry interface {
	Measure(id string) (r Rect, ok bool)
}

type Viewport interface {
	ScrollY() float64
}

// Frames schedules fn for the next animation frame.
type Frames interface {
	RequestFrame(fn func()) (cancel func())
}

type Clock interface {
	Now() time.Time
}

// Env bundles the host collaborators.
type Env struct {
	Signals  Signals
	Geometry Geometry
	Viewport Viewport
	Frames   Frames
	Clock    Clock
}

// DefaultMinInterval is the shortest gap between two recomputations.
const DefaultMinInterval = 16 * time.Millisecond

// Controller owns the active heading id of one document view.
//
// Signals never read geometry. Each one invalidates the pending frame and
// requests a new one; the frame callback does the measuring. After Stop no
// frame runs and no change is reported.
type Controller struct {
	mu sync.Mutex

	env         Env
	policy      Policy
	minInterval time.Duration
	logger      *slog.Logger

	identity string
	entries  []Entry
	active   string
	onChange []func(string)

	unsubscribe func()
	cancelFrame func()
	generation  uint64
	lastRun     time.Time
	started     bool
	stopped     bool
}

type Option func(*Controller)

func WithPolicy(p Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithMinInterval sets the frame gate. Zero disables it.
func WithMinInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.minInterval = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func New(entries []Entry, env Env, opts ...Option) *Controller {
	c := &Controller{
		env:         env,
		policy:      DefaultPolicy,
		minInterval: DefaultMinInterval,
		entries:     entries,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// OnChange registers fn to be called with every new active id.
func (c *Controller) OnChange(fn func(string)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// ActiveID returns the current active id, or "" before the first frame.
func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Start subscribes to signals and schedules the first measurement.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	unsub := c.env.Signals.Subscribe(c.signal)

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		unsub()
		return
	}
	c.unsubscribe = unsub
	c.mu.Unlock()

	c.signal()
}

// Stop removes the listeners and drops any pending frame. It is safe to
// call more than once.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.generation++
	cancel, unsub := c.cancelFrame, c.unsubscribe
	c.cancelFrame, c.unsubscribe = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if unsub != nil {
		unsub()
	}
}

// SetDocument replaces the tracked headings when identity differs from the
// current document. The active id is reset and a measurement scheduled.
func (c *Controller) SetDocument(identity string, entries []Entry) {
	c.mu.Lock()
	if c.stopped || identity == c.identity {
		c.mu.Unlock()
		return
	}
	c.identity = identity
	c.entries = entries
	changed := c.active != ""
	c.active = ""
	listeners := c.listeners(changed)
	started := c.started
	c.mu.Unlock()

	for _, fn := range listeners {
		fn("")
	}
	if started {
		c.signal()
	}
}

func (c *Controller) signal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if c.cancelFrame != nil {
		c.cancelFrame()
		c.cancelFrame = nil
	}
	c.generation++
	c.schedule(c.generation)
}

// schedule must be called with mu held.
func (c *Controller) schedule(gen uint64) {
	c.cancelFrame = c.env.Frames.RequestFrame(func() { c.frame(gen) })
}

func (c *Controller) frame(gen uint64) {
	c.mu.Lock()
	if c.stopped || gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.cancelFrame = nil

	now := c.env.Clock.Now()
	if c.minInterval > 0 && !c.lastRun.IsZero() && now.Sub(c.lastRun) < c.minInterval {
		c.schedule(gen)
		c.mu.Unlock()
		return
	}
	c.lastRun = now
	entries := c.entries
	c.mu.Unlock()

	measured := make([]Measured, 0, len(entries))
	for _, e := range entries {
		r, ok := c.env.Geometry.Measure(e.ID)
		if !ok {
			c.logger.Debug("heading not trackable this frame", "id", e.ID)
			continue
		}
		measured = append(measured, Measured{Entry: e, Rect: r})
	}
	scrollY := c.env.Viewport.ScrollY()

	c.mu.Lock()
	if c.stopped || gen != c.generation {
		c.mu.Unlock()
		return
	}
	next := ComputeActiveID(measured, scrollY, c.active, c.policy)
	changed := next != c.active
	c.active = next
	listeners := c.listeners(changed)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(next)
	}
}

func (c *Controller) listeners(changed bool) []func(string) {
	if !changed {
		return nil
	}
	return append(([]func(string))(nil), c.onChange...)
}

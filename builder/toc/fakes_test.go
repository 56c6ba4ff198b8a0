package toc

import "time"

type fakeSignals struct {
	handlers     []func()
	unsubscribed int
}

func (s *fakeSignals) Subscribe(fn func()) func() {
	s.handlers = append(s.handlers, fn)
	return func() {
		s.unsubscribed++
		s.handlers = nil
	}
}

func (s *fakeSignals) fire() {
	for _, fn := range s.handlers {
		fn()
	}
}

type queuedFrame struct {
	fn        func()
	cancelled bool
}

type fakeFrames struct {
	queue     []*queuedFrame
	cancelled int
}

func (f *fakeFrames) RequestFrame(fn func()) func() {
	q := &queuedFrame{fn: fn}
	f.queue = append(f.queue, q)
	return func() {
		if !q.cancelled {
			q.cancelled = true
			f.cancelled++
		}
	}
}

// flush runs the frames queued so far. Frames requested while flushing
// wait for the next flush.
func (f *fakeFrames) flush() int {
	pending := f.queue
	f.queue = nil
	ran := 0
	for _, q := range pending {
		if q.cancelled {
			continue
		}
		ran++
		q.fn()
	}
	return ran
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// fakePage lays headings out at fixed document offsets.
type fakePage struct {
	offsets  map[string]float64
	hidden   map[string]bool
	scrollY  float64
	measures int
}

func (p *fakePage) Measure(id string) (Rect, bool) {
	p.measures++
	off, ok := p.offsets[id]
	if !ok || p.hidden[id] {
		return Rect{}, false
	}
	top := off - p.scrollY
	return Rect{Top: top, Bottom: top + 40}, true
}

func (p *fakePage) ScrollY() float64 { return p.scrollY }

type harness struct {
	signals *fakeSignals
	frames  *fakeFrames
	clock   *fakeClock
	page    *fakePage
}

func newHarness(offsets map[string]float64) *harness {
	return &harness{
		signals: &fakeSignals{},
		frames:  &fakeFrames{},
		clock:   &fakeClock{now: time.Unix(1700000000, 0)},
		page:    &fakePage{offsets: offsets, hidden: map[string]bool{}},
	}
}

func (h *harness) env() Env {
	return Env{
		Signals:  h.signals,
		Geometry: h.page,
		Viewport: h.page,
		Frames:   h.frames,
		Clock:    h.clock,
	}
}

// scrollTo fires a signal and lets the next frame run after the gate.
func (h *harness) scrollTo(y float64) {
	h.page.scrollY = y
	h.signals.fire()
	h.clock.advance(20 * time.Millisecond)
	h.frames.flush()
}

// Package metrics tracks counters and timings for a site build.
package metrics

import (
	"fmt"
	"sync/atomic"
	"time"
)

// BuildMetrics is safe for concurrent use by the post workers.
type BuildMetrics struct {
	StartTime time.Time
	EndTime   time.Time

	RenderTime time.Duration
	AssetTime  time.Duration

	posts      atomic.Int64
	pages      atomic.Int64
	headings   atomic.Int64
	codeBlocks atomic.Int64
	mathSpans  atomic.Int64
	failures   atomic.Int64
}

// NewBuildMetrics creates a new metrics instance.
func NewBuildMetrics() *BuildMetrics {
	return &BuildMetrics{
		StartTime: time.Now(),
	}
}

// RecordEnd marks the end of the build.
func (m *BuildMetrics) RecordEnd() {
	m.EndTime = time.Now()
}

// TotalDuration returns the total build duration.
func (m *BuildMetrics) TotalDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// RecordPost counts one rendered article and what it contained.
func (m *BuildMetrics) RecordPost(headings, codeBlocks, mathSpans int) {
	m.posts.Add(1)
	m.headings.Add(int64(headings))
	m.codeBlocks.Add(int64(codeBlocks))
	m.mathSpans.Add(int64(mathSpans))
}

// RecordPage counts one written HTML page.
func (m *BuildMetrics) RecordPage() { m.pages.Add(1) }

// RecordFailure counts one post or page that could not be produced.
func (m *BuildMetrics) RecordFailure() { m.failures.Add(1) }

func (m *BuildMetrics) Posts() int      { return int(m.posts.Load()) }
func (m *BuildMetrics) Pages() int      { return int(m.pages.Load()) }
func (m *BuildMetrics) Headings() int   { return int(m.headings.Load()) }
func (m *BuildMetrics) CodeBlocks() int { return int(m.codeBlocks.Load()) }
func (m *BuildMetrics) MathSpans() int  { return int(m.mathSpans.Load()) }
func (m *BuildMetrics) Failures() int   { return int(m.failures.Load()) }

// String returns a single-line summary.
func (m *BuildMetrics) String() string {
	s := fmt.Sprintf("📊 Built %d posts, %d pages in %v (%d headings, %d code blocks, %d math)",
		m.Posts(), m.Pages(), m.TotalDuration().Round(time.Millisecond),
		m.Headings(), m.CodeBlocks(), m.MathSpans())
	if f := m.Failures(); f > 0 {
		s += fmt.Sprintf(", %d failed", f)
	}
	return s
}

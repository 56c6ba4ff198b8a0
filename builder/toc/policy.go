// Package toc tracks which heading of a rendered document is active while
// the reader scrolls.
//
// The decision itself is the pure function ComputeActiveID. Controller
// wires it to scroll signals, animation frames and geometry reads supplied
// by the host environment.
package toc

import (
	"math"

	"github.com/harunosuke/web/builder/models"
)

// Entry is one trackable heading.
type Entry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Level int    `json:"level"`
}

// Entries converts headings to entries, dropping unanchorable ones.
func Entries(headings []models.Heading) []Entry {
	out := make([]Entry, 0, len(headings))
	for _, h := range headings {
		if !h.Anchorable() {
			continue
		}
		out = append(out, Entry{ID: h.ID, Title: h.Title, Level: h.Level})
	}
	return out
}

// Rect is the viewport-relative vertical extent of a heading element.
type Rect struct {
	Top    float64
	Bottom float64
}

// Measured pairs an entry with the geometry read this frame.
type Measured struct {
	Entry
	Rect Rect
}

// Strategy selects how the active heading is scored.
type Strategy int

const (
	// ThresholdLine picks the last heading whose top has scrolled above
	// the offset line.
	ThresholdLine Strategy = iota
	// ClosestAnchor picks the heading whose top is nearest the offset.
	ClosestAnchor
)

func (s Strategy) String() string {
	if s == ClosestAnchor {
		return "closest"
	}
	return "threshold"
}

// Policy is the tunable scoring rule.
type Policy struct {
	Strategy Strategy
	// Offset is the distance in pixels from the top of the viewport.
	Offset float64
}

const DefaultOffset = 150

// DefaultPolicy is the threshold line 150px below the viewport top.
var DefaultPolicy = Policy{Strategy: ThresholdLine, Offset: DefaultOffset}

// ComputeActiveID returns the id that should be active given the headings
// measured this frame, in document order.
//
// When no heading qualifies the first measured heading wins if the viewport
// is at the top of the page; otherwise current is kept.
func ComputeActiveID(measured []Measured, scrollY float64, current string, p Policy) string {
	if len(measured) == 0 {
		return current
	}

	best := -1
	switch p.Strategy {
	case ClosestAnchor:
		bestDist := math.Inf(1)
		for i, m := range measured {
			if d := math.Abs(m.Rect.Top - p.Offset); d < bestDist {
				best, bestDist = i, d
			}
		}
	default:
		for i, m := range measured {
			if m.Rect.Top <= p.Offset {
				best = i
			}
		}
	}

	if best >= 0 {
		return measured[best].ID
	}
	if scrollY <= 0 {
		return measured[0].ID
	}
	return current
}

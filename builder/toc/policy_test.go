package toc

import (
	"testing"

	"github.com/harunosuke/web/builder/models"
)

func measured(tops ...float64) []Measured {
	ids := []string{"a", "b", "c", "d", "e"}
	out := make([]Measured, len(tops))
	for i, top := range tops {
		out[i] = Measured{Entry: Entry{ID: ids[i], Level: 2}, Rect: Rect{Top: top, Bottom: top + 40}}
	}
	return out
}

func TestComputeActiveIDThresholdLine(t *testing.T) {
	tests := []struct {
		name    string
		tops    []float64
		scrollY float64
		current string
		want    string
	}{
		{"at top nothing above line", []float64{300, 900}, 0, "", "a"},
		{"first crosses line", []float64{120, 700}, 200, "", "a"},
		{"last above line wins", []float64{-500, -100, 140, 600}, 900, "a", "c"},
		{"exactly on the line", []float64{-20, 150}, 300, "", "b"},
		{"nothing qualifies mid page keeps current", []float64{400, 900}, 50, "x", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeActiveID(measured(tt.tops...), tt.scrollY, tt.current, DefaultPolicy)
			if got != tt.want {
				t.Errorf("ComputeActiveID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComputeActiveIDClosestAnchor(t *testing.T) {
	p := Policy{Strategy: ClosestAnchor, Offset: 100}

	if got := ComputeActiveID(measured(-300, 90, 400), 500, "", p); got != "b" {
		t.Errorf("closest = %q, want b", got)
	}
	// equal distance keeps the earlier heading
	if got := ComputeActiveID(measured(50, 150), 500, "", p); got != "a" {
		t.Errorf("tie = %q, want a", got)
	}
}

func TestComputeActiveIDEmpty(t *testing.T) {
	if got := ComputeActiveID(nil, 0, "keep", DefaultPolicy); got != "keep" {
		t.Errorf("empty = %q, want keep", got)
	}
}

func TestEntriesDropsUnanchorable(t *testing.T) {
	got := Entries([]models.Heading{
		{ID: "intro", Title: "Intro", Level: 2},
		{ID: "", Title: "", Level: 2},
		{ID: "usage", Title: "Usage", Level: 3},
	})
	if len(got) != 2 || got[0].ID != "intro" || got[1].ID != "usage" {
		t.Errorf("Entries() = %+v", got)
	}
}

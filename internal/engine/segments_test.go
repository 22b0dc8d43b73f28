package engine

import (
	"math"
	"testing"
)

func TestPlanSegments_EvenSplit(t *testing.T) {
	segs, err := planSegments(1800, 0, 0, 600)
	if err != nil {
		t.Fatalf("planSegments() error = %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	for i, seg := range segs {
		if seg.Start != float64(i*600) {
			t.Errorf("segment %d start = %v, want %v", i, seg.Start, i*600)
		}
		if seg.Length != 600 {
			t.Errorf("segment %d length = %v, want 600", i, seg.Length)
		}
	}
}

func TestPlanSegments_IntroOutroTrimmed(t *testing.T) {
	segs, err := planSegments(1000, 30, 70, 450)
	if err != nil {
		t.Fatalf("planSegments() error = %v", err)
	}
	// content window is [30, 930): 450 + 450
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	if segs[0].Start != 30 {
		t.Errorf("first start = %v, want 30", segs[0].Start)
	}
	last := segs[len(segs)-1]
	if got := last.Start + last.Length; math.Abs(got-930) > 1e-9 {
		t.Errorf("coverage ends at %v, want 930", got)
	}
}

func TestPlanSegments_ShortLastPart(t *testing.T) {
	segs, err := planSegments(1500, 0, 0, 600)
	if err != nil {
		t.Fatalf("planSegments() error = %v", err)
	}
	if len(segs) != 3 {
		t.Fatalf("got %d segments, want 3", len(segs))
	}
	if segs[2].Length != 300 {
		t.Errorf("last length = %v, want 300", segs[2].Length)
	}
}

func TestPlanSegments_SubSecondTailMerged(t *testing.T) {
	segs, err := planSegments(600.5, 0, 0, 600)
	if err != nil {
		t.Fatalf("planSegments() error = %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1 (tail merged)", len(segs))
	}
	if math.Abs(segs[0].Length-600.5) > 1e-9 {
		t.Errorf("merged length = %v, want 600.5", segs[0].Length)
	}
}

func TestPlanSegments_NoContentLeft(t *testing.T) {
	if _, err := planSegments(100, 60, 60, 30); err == nil {
		t.Fatal("expected error when intro+outro exceed duration")
	}
}

func TestPlanSegments_ZeroDuration(t *testing.T) {
	if _, err := planSegments(0, 0, 0, 600); err == nil {
		t.Fatal("expected error for zero duration")
	}
}

func TestJobPercent(t *testing.T) {
	tests := []struct {
		name      string
		segIndex  int
		segTotal  int
		segDone   float64
		segLength float64
		want      int
	}{
		{"start of first", 0, 2, 0, 600, 0},
		{"half of first", 0, 2, 300, 600, 25},
		{"half of second", 1, 2, 300, 600, 75},
		{"overshoot clamped", 0, 1, 900, 600, 100},
		{"negative clamped", 0, 1, -5, 600, 0},
		{"zero total", 0, 0, 10, 600, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := jobPercent(tt.segIndex, tt.segTotal, tt.segDone, tt.segLength); got != tt.want {
				t.Errorf("jobPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPresetArgs_FastIsStreamCopy(t *testing.T) {
	args := presetArgs(PresetFast)
	if args[0] != "-c" || args[1] != "copy" {
		t.Errorf("fast preset args = %v, want stream copy", args)
	}
}

func TestPresetArgs_HighReencodes(t *testing.T) {
	args := presetArgs(PresetHigh)
	found := false
	for i, a := range args {
		if a == "-crf" && i+1 < len(args) && args[i+1] == "18" {
			found = true
		}
	}
	if !found {
		t.Errorf("high preset args = %v, want -crf 18", args)
	}
}

package scene

import "testing"

func TestTrimWindowInvariant(t *testing.T) {
	w := NewTrimWindow(30)
	if w.Start != 0 || w.End != 30 {
		t.Fatalf("New window should cover the asset, got [%f,%f)", w.Start, w.End)
	}

	// Any sequence of updates keeps 0 <= start < end <= assetDuration
	updates := []struct {
		setStart bool
		value    float64
	}{
		{true, 5}, {false, 15}, {true, 20}, // start=20 rejected (>= end 15)
		{true, -3},                // clamped to 0
		{false, 45},               // clamped to 30
		{false, 0}, {false, -1},   // rejected (<= start)
		{true, 29.9}, {false, 10}, // end=10 rejected after start=29.9? start 29.9 < end 30 ok; end 10 rejected
	}
	for _, u := range updates {
		if u.setStart {
			w.SetStart(u.value)
		} else {
			w.SetEnd(u.value)
		}
		if !(0 <= w.Start && w.Start < w.End && w.End <= w.AssetDuration) {
			t.Fatalf("Invariant broken after update %+v: [%f,%f)", u, w.Start, w.End)
		}
	}
}

func TestTrimWindowRejections(t *testing.T) {
	w := NewTrimWindow(30)
	w.SetStart(5)
	w.SetEnd(15)

	w.SetStart(15) // == end, reject
	if w.Start != 5 {
		t.Errorf("start == end accepted: %f", w.Start)
	}
	w.SetEnd(5) // == start, reject
	if w.End != 15 {
		t.Errorf("end == start accepted: %f", w.End)
	}
	w.SetEnd(3) // < start, reject
	if w.End != 15 {
		t.Errorf("end < start accepted: %f", w.End)
	}

	if w.Length() != 10 {
		t.Errorf("Length: got %f, want 10", w.Length())
	}
}

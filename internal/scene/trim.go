package scene

// TrimWindow is the [Start,End) sub-range of an audio asset selected for
// looped playback. The invariant 0 <= Start < End <= AssetDuration holds at
// all times: an update that would break it is rejected and the previous
// valid value kept. All values are seconds.
type TrimWindow struct {
	AssetDuration float64
	Start         float64
	End           float64
}

// NewTrimWindow covers the whole asset.
func NewTrimWindow(assetDuration float64) *TrimWindow {
	return &TrimWindow{AssetDuration: assetDuration, Start: 0, End: assetDuration}
}

// SetStart moves the window start. Values are clamped into [0, AssetDuration];
// a start that would reach End is rejected.
func (w *TrimWindow) SetStart(start float64) {
	if start < 0 {
		start = 0
	}
	if start > w.AssetDuration {
		start = w.AssetDuration
	}
	if start >= w.End {
		return
	}
	w.Start = start
}

// SetEnd moves the window end. Values are clamped into [0, AssetDuration];
// an end at or before Start is rejected.
func (w *TrimWindow) SetEnd(end float64) {
	if end < 0 {
		end = 0
	}
	if end > w.AssetDuration {
		end = w.AssetDuration
	}
	if end <= w.Start {
		return
	}
	w.End = end
}

// Length returns the trimmed segment length in seconds.
func (w *TrimWindow) Length() float64 {
	return w.End - w.Start
}

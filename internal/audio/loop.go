package audio

// loopStreamer plays a [start,end) sample window of a seekable source and
// wraps back to start when the play-head reaches end. The native whole-file
// loop flag of the playback layer is useless here: it repeats the entire
// asset, not the trimmed window, so looping is done by hand.
type loopStreamer struct {
	src        streamSeeker
	start, end int // sample bounds, start < end
	pos        int
	err        error
}

// streamSeeker is the subset of beep.StreamSeeker the looper needs; tests
// substitute an in-memory implementation.
type streamSeeker interface {
	Stream(samples [][2]float64) (n int, ok bool)
	Err() error
	Seek(p int) error
}

func newLoopStreamer(src streamSeeker, start, end int) *loopStreamer {
	l := &loopStreamer{src: src, start: start, end: end, pos: -1}
	l.rewind()
	return l
}

func (l *loopStreamer) rewind() {
	if l.err = l.src.Seek(l.start); l.err == nil {
		l.pos = l.start
	}
}

// SetBounds moves the loop window. A play-head left outside the new window
// is clamped back to start before playback resumes.
func (l *loopStreamer) SetBounds(start, end int) {
	if start < 0 || start >= end {
		return
	}
	l.start, l.end = start, end
	if l.pos < start || l.pos >= end {
		l.rewind()
	}
}

// Position returns the current play-head in samples from asset start.
func (l *loopStreamer) Position() int { return l.pos }

func (l *loopStreamer) Stream(out [][2]float64) (int, bool) {
	if l.err != nil {
		return 0, false
	}
	total := 0
	for total < len(out) {
		remain := l.end - l.pos
		if remain <= 0 {
			l.rewind()
			if l.err != nil {
				return total, total > 0
			}
			continue
		}
		want := len(out) - total
		if want > remain {
			want = remain
		}
		n, ok := l.src.Stream(out[total : total+want])
		l.pos += n
		total += n
		if !ok {
			// source ran short of its own reported window; wrap and retry
			l.rewind()
			if l.err != nil || n == 0 {
				return total, total > 0
			}
		}
	}
	return total, true
}

func (l *loopStreamer) Err() error {
	if l.err != nil {
		return l.err
	}
	return l.src.Err()
}

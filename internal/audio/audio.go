// Package audio owns the trim window and its looped preview playback. The
// same window feeds the capture pipeline's encoder arguments, so what the
// user hears in preview is exactly what the export contains.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/ivlev/scene2video/internal/scene"
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Player holds a fully decoded audio asset and its trim window.
type Player struct {
	Path   string
	format beep.Format
	buffer *beep.Buffer
	window *scene.TrimWindow

	mu   sync.Mutex
	loop *loopStreamer
	ctrl *beep.Ctrl
}

// Load decodes the whole asset into sample memory. This is the one real
// asynchronous wait of the capture start sequence; the caller decides how a
// failure degrades (the pipeline falls back to video-only).
func Load(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("неподдерживаемый формат аудио: %s", path)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("ошибка декодирования аудио %s: %w", path, err)
	}

	buffer := beep.NewBuffer(format)
	buffer.Append(streamer)
	streamer.Close()

	duration := format.SampleRate.D(buffer.Len()).Seconds()
	return &Player{
		Path:   path,
		format: format,
		buffer: buffer,
		window: scene.NewTrimWindow(duration),
	}, nil
}

// Window exposes the trim window; it is the single source of truth shared
// with the capture pipeline.
func (p *Player) Window() *scene.TrimWindow { return p.window }

// SetStart updates the window start (silently rejected when invalid) and
// re-aims a running preview loop.
func (p *Player) SetStart(sec float64) {
	p.window.SetStart(sec)
	p.syncBounds()
}

// SetEnd updates the window end (silently rejected when invalid) and
// re-aims a running preview loop.
func (p *Player) SetEnd(sec float64) {
	p.window.SetEnd(sec)
	p.syncBounds()
}

func (p *Player) syncBounds() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loop == nil {
		return
	}
	speaker.Lock()
	p.loop.SetBounds(p.sampleBounds())
	speaker.Unlock()
}

func (p *Player) sampleBounds() (int, int) {
	start := p.format.SampleRate.N(time.Duration(p.window.Start * float64(time.Second)))
	end := p.format.SampleRate.N(time.Duration(p.window.End * float64(time.Second)))
	if end > p.buffer.Len() {
		end = p.buffer.Len()
	}
	return start, end
}

// Play starts looped preview playback of the trimmed window.
func (p *Player) Play() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(p.format.SampleRate, p.format.SampleRate.N(100*time.Millisecond))
	})
	if speakerErr != nil {
		return fmt.Errorf("ошибка инициализации аудио-вывода: %w", speakerErr)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
		return nil
	}

	start, end := p.sampleBounds()
	p.loop = newLoopStreamer(p.buffer.Streamer(0, p.buffer.Len()), start, end)
	p.ctrl = &beep.Ctrl{Streamer: p.loop}
	speaker.Play(p.ctrl)
	return nil
}

// Pause suspends preview playback without losing the play-head.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Stop tears down the preview stream entirely.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Clear()
	p.ctrl = nil
	p.loop = nil
}

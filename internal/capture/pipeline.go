// Package capture реализует конвейер записи: он забирает владение
// планировщиком у предпросмотра, гонит кадры по настенным часам в
// кодировщик и возвращает владение обратно при любом исходе.
package capture

import (
	"context"
	"fmt"
	"image"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/particles"
	"github.com/ivlev/scene2video/internal/preview"
	"github.com/ivlev/scene2video/internal/render"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/system"
)

// State — фаза конвейера. Failed сохраняется до следующего запуска,
// чтобы вызывающий код мог показать причину сбоя.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCapturing:
		return "capturing"
	case StateFailed:
		return "failed"
	}
	return "idle"
}

// Previewer — то, что конвейер приостанавливает на время записи.
type Previewer interface {
	Pause()
	Resume()
}

// Pipeline пишет один ролик за вызов Export. Повторный вызов во время
// записи отклоняется: захват и предпросмотр не делят движок.
type Pipeline struct {
	cfg    *config.Config
	engine *render.Engine
	gate   *preview.Gate
	prev   Previewer
	sink   FrameSink

	// OnProgress получает целые проценты 0..100, строго неубывающие.
	OnProgress func(int)

	mu    sync.Mutex
	state State

	// Часы и сон вынесены в поля ради тестов.
	now   func() time.Time
	sleep func(time.Duration)
}

func NewPipeline(cfg *config.Config, engine *render.Engine, gate *preview.Gate, prev Previewer, sink FrameSink) *Pipeline {
	if sink == nil {
		sink = &FFmpegSink{}
	}
	return &Pipeline{
		cfg:    cfg,
		engine: engine,
		gate:   gate,
		prev:   prev,
		sink:   sink,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pipeline) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// Export записывает сцену в файл и возвращает его путь. Аудио-сбой не
// прерывает запись: ролик деградирует до видео без звука.
func (p *Pipeline) Export(ctx context.Context, st *scene.State, audioPath, baseName string) (string, error) {
	if err := st.Validate(); err != nil {
		return "", err
	}

	p.mu.Lock()
	if p.state == StateCapturing {
		p.mu.Unlock()
		return "", fmt.Errorf("захват уже идет")
	}
	p.state = StateCapturing
	p.mu.Unlock()

	if p.prev != nil {
		p.prev.Pause()
	}
	if err := p.gate.Acquire(preview.OwnerCapture); err != nil {
		p.setState(StateFailed)
		if p.prev != nil {
			p.prev.Resume()
		}
		return "", err
	}

	outPath, err := p.run(ctx, st, audioPath, baseName)

	// Владение и предпросмотр восстанавливаются при любом исходе.
	p.gate.Release(preview.OwnerCapture)
	if p.prev != nil {
		p.prev.Resume()
	}
	if err != nil {
		p.setState(StateFailed)
		return "", err
	}
	p.setState(StateIdle)
	return outPath, nil
}

func (p *Pipeline) run(ctx context.Context, st *scene.State, audioPath, baseName string) (string, error) {
	startTime := p.now()

	fps := p.cfg.CaptureFPS
	if fps <= 0 {
		fps = 60
	}

	encoderName := p.cfg.VideoEncoder
	if encoderName == "" || encoderName == "auto" {
		encoderName = system.GetBestH264Encoder()
	}
	log.Printf("[*] Энкодер: %s", encoderName)

	outPath := p.cfg.OutputVideo
	if outPath == "" {
		outPath = OutputName(baseName, st.Aspect, st.Duration)
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("не удалось создать папку вывода: %w", err)
		}
	}

	spec := StreamSpec{
		Width:       st.Aspect.Width,
		Height:      st.Aspect.Height,
		FPS:         fps,
		Duration:    st.Duration,
		OutputPath:  outPath,
		EncoderName: encoderName,
		Quality:     p.cfg.Quality,
		Audio:       p.audioSegment(st, audioPath),
	}

	if err := p.sink.Start(ctx, spec); err != nil {
		return "", err
	}

	framesTotal, err := p.stream(ctx, st, fps)
	if cerr := p.sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}

	if p.cfg.ShowStats {
		p.printStats(outPath, framesTotal, p.now().Sub(startTime))
	}
	log.Printf("[+++] Видео готово: %s", outPath)
	return outPath, nil
}

// audioSegment готовит аудио-окно для мультиплексирования. Любая ошибка
// пробы деградирует ролик до видео без звука, запись продолжается.
func (p *Pipeline) audioSegment(st *scene.State, audioPath string) *AudioSegment {
	if audioPath == "" || st.Audio == nil {
		return nil
	}
	rate, err := system.GetAudioSampleRate(audioPath)
	if err != nil {
		log.Printf("[!] Аудио недоступно (%v), пишем без звука", err)
		return nil
	}
	seg := &AudioSegment{
		Path:       audioPath,
		Start:      st.Audio.Start,
		End:        st.Audio.End,
		SampleRate: rate,
	}
	log.Printf("[*] Аудио-окно %.2fs - %.2fs, полных петель: %d",
		seg.Start, seg.End, SegmentLoops(st.Duration, seg.End-seg.Start))
	return seg
}

// stream гонит кадры по настенным часам. Если рендер не успевает за
// частотой, пропущенные слоты заполняются дублями последнего кадра:
// медленная машина роняет плавность, но не длительность ролика.
func (p *Pipeline) stream(ctx context.Context, st *scene.State, fps int) (int, error) {
	w, h := st.Aspect.Width, st.Aspect.Height
	// Округление вверх: последний неполный слот кадра тоже пишется,
	// иначе дробная длительность дает ролик короче сцены.
	framesTotal := int(math.Ceil(st.Duration * float64(fps)))
	if framesTotal < 1 {
		framesTotal = 1
	}

	sim := particles.NewSimulator(rand.New(rand.NewSource(p.now().UnixNano())))
	sim.Configure(st.Weather, w, h)

	frame := system.GetFrame(image.Rect(0, 0, w, h))
	defer system.PutFrame(frame)

	start := p.now()
	frameDur := time.Second / time.Duration(fps)
	written := 0
	lastProgress := -1

	for written < framesTotal {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		elapsed := p.now().Sub(start).Seconds()
		slot := int(elapsed*float64(fps)) + 1
		if slot > framesTotal {
			slot = framesTotal
		}
		if slot <= written {
			next := start.Add(time.Duration(written) * frameDur)
			if d := next.Sub(p.now()); d > 0 {
				p.sleep(d)
			}
			continue
		}

		sim.Step()
		elapsedMs := math.Min(elapsed, st.Duration) * 1000
		if err := p.engine.Render(frame, st, sim.Particles(), elapsedMs); err != nil {
			return written, err
		}
		for written < slot {
			if err := p.sink.WriteFrame(frame.Pix); err != nil {
				return written, err
			}
			written++
		}

		if pr := written * 100 / framesTotal; pr > lastProgress {
			lastProgress = pr
			if p.OnProgress != nil {
				p.OnProgress(pr)
			}
		}
	}

	return framesTotal, nil
}

// Package preview содержит планировщик предпросмотра: свободно бегущие
// часы, которые гоняют движок отрисовки по текущей сцене, пока захват
// не заберёт владение через Gate.
package preview

import (
	"image"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/ivlev/scene2video/internal/particles"
	"github.com/ivlev/scene2video/internal/render"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/system"
)

// FrameSink получает готовый кадр предпросмотра. Кадр валиден только до
// возврата из колбэка: после него буфер уходит обратно в пул.
type FrameSink func(frame *image.RGBA, elapsedMs float64)

// Scheduler рендерит сцену с частотой экрана. Часы свободные: elapsed
// считается от момента запуска по настенным часам, поэтому нагрузка
// снижает частоту кадров, но не замедляет анимацию.
type Scheduler struct {
	gate     *Gate
	engine   *render.Engine
	sink     FrameSink
	interval time.Duration

	mu      sync.Mutex
	st      *scene.State
	running bool
	stop    chan struct{}
	done    chan struct{}
	started time.Time
	sim     *particles.Simulator
}

func NewScheduler(gate *Gate, engine *render.Engine, sink FrameSink) *Scheduler {
	return &Scheduler{
		gate:     gate,
		engine:   engine,
		sink:     sink,
		interval: time.Second / 60,
		sim:      particles.NewSimulator(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

// SetScene подменяет сцену между тиками. Снимок читается целиком на
// каждом кадре, поэтому подмена не рвёт кадр посередине.
func (s *Scheduler) SetScene(st *scene.State) {
	s.mu.Lock()
	s.st = st
	s.mu.Unlock()
}

// Start захватывает планировщик и запускает цикл кадров. Возвращает
// ошибку, если владение уже у захвата.
func (s *Scheduler) Start(st *scene.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	if err := s.gate.Acquire(OwnerPreview); err != nil {
		return err
	}
	s.st = st
	s.running = true
	s.started = time.Now()
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
	return nil
}

// Stop синхронно останавливает цикл и отдаёт владение. После возврата
// ни один кадр предпросмотра больше не рендерится.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
	s.gate.Release(OwnerPreview)
}

// Pause и Resume образуют передачу владения захвату: Pause гарантирует,
// что тики прекратились до старта записи, Resume возвращает предпросмотр
// на ту же сцену после неё.
func (s *Scheduler) Pause() { s.Stop() }

func (s *Scheduler) Resume() {
	s.mu.Lock()
	st := s.st
	s.mu.Unlock()
	if st == nil {
		return
	}
	_ = s.Start(st)
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			s.tick(now)
		}
	}
}

func (s *Scheduler) tick(now time.Time) {
	s.mu.Lock()
	st := s.st
	started := s.started
	s.mu.Unlock()
	if st == nil {
		return
	}

	w, h := st.Aspect.Width, st.Aspect.Height
	s.sim.Configure(st.Weather, w, h)
	s.sim.Step()

	elapsedMs := float64(now.Sub(started).Milliseconds())
	frame := system.GetFrame(image.Rect(0, 0, w, h))
	defer system.PutFrame(frame)
	if err := s.engine.Render(frame, st, s.sim.Particles(), elapsedMs); err != nil {
		log.Printf("[!] Ошибка рендера кадра предпросмотра: %v", err)
		return
	}
	if s.sink != nil {
		s.sink(frame, elapsedMs)
	}
}

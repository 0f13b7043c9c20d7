package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ivlev/scene2video/internal/audio"
	"github.com/ivlev/scene2video/internal/capture"
	"github.com/ivlev/scene2video/internal/config"
	"github.com/ivlev/scene2video/internal/palette"
	"github.com/ivlev/scene2video/internal/preview"
	"github.com/ivlev/scene2video/internal/render"
	"github.com/ivlev/scene2video/internal/scene"
	"github.com/ivlev/scene2video/internal/source"
	"github.com/ivlev/scene2video/internal/system"
)

const buildVersion = "1.0.0"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", "input/backgrounds", "input/scenes", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	scenePtr := flag.String("scene", "", "Путь к YAML-файлу сцены (по умолчанию: самый свежий файл в input/scenes/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется по шаблону в output/)")
	presetPtr := flag.String("preset", "", "Пресет формата поверх сцены: "+strings.Join(config.AspectNames(), ", "))
	durationPtr := flag.Float64("duration", 0, "Длительность ролика в секундах (0 — из сцены)")
	speedPtr := flag.Float64("speed", 0, "Множитель скорости анимации (0 — из сцены)")
	audioPtr := flag.String("audio", "", "Путь к аудио (по умолчанию: самый свежий файл в input/audio/; 'none' — без звука)")
	audioStartPtr := flag.Float64("audio-start", 0, "Начало аудио-окна в секундах")
	audioEndPtr := flag.Float64("audio-end", 0, "Конец аудио-окна в секундах (0 — до конца дорожки)")
	backgroundPtr := flag.String("background", "", "Фоновое изображение или PDF поверх сцены")
	fontPtr := flag.String("font", "", "Путь к TTF/OTF шрифту для текстовых слоев")
	palettePtr := flag.String("palette", "", "Извлечение палитры из фона: histogram (пусто — палитра сцены)")
	fpsPtr := flag.Int("fps", 60, "Частота кадров записи")
	encoderPtr := flag.String("encoder", "auto", "Видео-энкодер: auto, libx264, h264_videotoolbox, h264_nvenc")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Печатать отчет о производительности")
	benchPtr := flag.Float64("preview-bench", 0, "Прогнать предпросмотр N секунд перед записью и показать его FPS")
	demoPtr := flag.Bool("write-demo-scene", false, "Записать демо-сцену в input/scenes/demo.yaml и выйти")

	flag.Parse()

	if *demoPtr {
		path := filepath.Join("input", "scenes", "demo.yaml")
		if err := scene.WriteDocument(demoDocument(), path); err != nil {
			log.Fatalf("[-] Ошибка записи демо-сцены: %v", err)
		}
		fmt.Printf("[+++] Демо-сцена записана: %s\n", path)
		return
	}

	scenePath := *scenePtr
	if scenePath == "" {
		latest, err := system.FindLatestScene("input/scenes")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите сцену в input/scenes/ или запустите с -write-demo-scene", err)
		}
		scenePath = latest
		fmt.Printf("[*] Выбрана сцена: %s\n", scenePath)
	}

	doc, err := scene.ReadDocument(scenePath)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения сцены: %v", err)
	}

	// Палитру "auto" разрешаем сами: BuildState принимает только hex-цвета.
	paletteMode := *palettePtr
	if len(doc.Palette) == 1 && strings.EqualFold(doc.Palette[0], "auto") {
		doc.Palette = nil
		if paletteMode == "" {
			paletteMode = "histogram"
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	st, err := doc.BuildState(rng)
	if err != nil {
		log.Fatalf("[-] Ошибка сборки сцены: %v", err)
	}

	if *durationPtr > 0 {
		st.Duration = *durationPtr
	}
	if *speedPtr > 0 {
		st.Speed = *speedPtr
	}
	if *presetPtr != "" {
		aspect, err := config.AspectByName(*presetPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		if aspect != st.Aspect {
			st.Aspect = aspect
			// Смена холста пересоздает дескрипторы пятен.
			st.Blobs = scene.GenerateBlobs(st.Palette, rng)
		}
	}

	bg := attachBackground(st, doc, *backgroundPtr, "input/backgrounds")
	resolvePalette(st, bg, paletteMode, rng)
	attachLogo(st, doc)

	fonts, err := render.NewFontSet()
	if err != nil {
		log.Fatalf("[-] Ошибка загрузки шрифтов: %v", err)
	}
	if *fontPtr != "" {
		data, err := os.ReadFile(*fontPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения шрифта: %v", err)
		}
		key := strings.TrimSuffix(filepath.Base(*fontPtr), filepath.Ext(*fontPtr))
		if err := fonts.Register(key, data); err != nil {
			log.Fatalf("[-] Ошибка регистрации шрифта: %v", err)
		}
		fmt.Printf("[*] Шрифт зарегистрирован: %s\n", key)
	}

	audioPath, player := attachAudio(st, *audioPtr, *audioStartPtr, *audioEndPtr)

	cfg := &config.Config{
		ScenePath:    scenePath,
		OutputVideo:  *outputPtr,
		AudioPath:    audioPath,
		FontPath:     *fontPtr,
		CaptureFPS:   *fpsPtr,
		VideoEncoder: *encoderPtr,
		Quality:      pickQuality(*qualityPtr, *encoderPtr),
		ShowStats:    *statsPtr,
		BuildVersion: buildVersion,
	}

	engine := render.NewEngine(fonts)
	gate := preview.NewGate()
	scheduler := runPreviewBench(gate, engine, st, player, *benchPtr)

	var prev capture.Previewer
	if scheduler != nil {
		prev = scheduler
		defer scheduler.Stop()
	}

	pipeline := capture.NewPipeline(cfg, engine, gate, prev, nil)
	pipeline.OnProgress = func(p int) {
		if p%10 == 0 {
			fmt.Printf("[>] Запись: %d%%\n", p)
		}
	}

	baseName := strings.TrimSuffix(filepath.Base(scenePath), filepath.Ext(scenePath))
	if cfg.OutputVideo == "" {
		cfg.OutputVideo = filepath.Join("output", capture.OutputName(baseName, st.Aspect, st.Duration))
	}

	out, err := pipeline.Export(context.Background(), st, audioPath, baseName)
	if err != nil {
		log.Fatalf("[-] Ошибка записи: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", out)
}

// attachBackground подключает фоновую картинку (или первую страницу PDF)
// и возвращает ее для извлечения палитры. Сцена без фона вовсе получает
// самый свежий файл из fallbackDir. Сбой загрузки не фатален: сцена
// откатывается на сплошной цвет.
func attachBackground(st *scene.State, doc *scene.Document, override, fallbackDir string) image.Image {
	path := doc.Background.Image
	if override != "" {
		path = override
	}
	if path == "" && doc.Background.Color == "" && fallbackDir != "" {
		latest, err := system.FindLatestImage(fallbackDir)
		if err == nil {
			path = latest
			fmt.Printf("[*] Выбран фон: %s\n", path)
		}
	}
	if path == "" {
		return nil
	}
	img, err := source.LoadBitmap(path)
	if err != nil {
		log.Printf("[!] Фон недоступен (%v), используем сплошной цвет", err)
		return nil
	}
	st.Background = scene.BitmapBackground{Image: img}
	return img
}

func resolvePalette(st *scene.State, bg image.Image, mode string, rng *rand.Rand) {
	if mode == "" {
		return
	}
	if bg == nil {
		log.Fatalf("[-] Извлечение палитры %q требует фонового изображения", mode)
	}
	ex, err := palette.NewExtractor(mode)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	colors, err := ex.Extract(bg, 4)
	if err != nil {
		log.Fatalf("[-] Ошибка извлечения палитры: %v", err)
	}
	fmt.Printf("[*] Палитра из фона: %d цветов\n", len(colors))
	st.Palette = colors
	st.Blobs = scene.GenerateBlobs(colors, rng)
}

func attachLogo(st *scene.State, doc *scene.Document) {
	if doc.Logo == nil {
		return
	}
	var img image.Image
	var err error
	switch {
	case doc.Logo.QRURL != "":
		size := int(doc.Logo.Width * float64(st.Aspect.Width))
		img, err = source.QRBitmap(doc.Logo.QRURL, size)
	case doc.Logo.Image != "":
		img, err = source.LoadBitmap(doc.Logo.Image)
	default:
		return
	}
	if err != nil {
		log.Printf("[!] Логотип недоступен (%v), слой пропущен", err)
		return
	}
	st.Logo = &scene.LogoLayer{
		Image:     img,
		AnchorX:   doc.Logo.X,
		AnchorY:   doc.Logo.Y,
		WidthFrac: doc.Logo.Width,
		Opacity:   doc.Logo.Opacity,
	}
}

// attachAudio находит дорожку, строит окно обрезки и декодирует буфер
// для предпрослушивания. Любой сбой деградирует ролик до видео без
// звука.
func attachAudio(st *scene.State, flagPath string, start, end float64) (string, *audio.Player) {
	if flagPath == "none" {
		return "", nil
	}
	path := flagPath
	if path == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err != nil {
			return "", nil
		}
		path = latest
		fmt.Printf("[*] Выбрано аудио: %s\n", path)
	}

	dur, err := system.GetAudioDuration(path)
	if err != nil {
		log.Printf("[!] Аудио недоступно (%v), пишем без звука", err)
		return "", nil
	}

	window := scene.NewTrimWindow(dur)
	if start > 0 {
		window.SetStart(start)
	}
	if end > 0 {
		window.SetEnd(end)
	}
	st.Audio = window
	fmt.Printf("[*] Аудио-окно: %.2fs - %.2fs из %.2fs\n", window.Start, window.End, dur)

	player, err := audio.Load(path)
	if err != nil {
		// Для записи декодер не нужен: ffmpeg читает файл сам.
		log.Printf("[!] Предпрослушивание недоступно: %v", err)
		return path, nil
	}
	player.SetStart(window.Start)
	if end > 0 {
		player.SetEnd(window.End)
	}
	return path, player
}

// runPreviewBench крутит планировщик предпросмотра с зацикленным звуком
// и печатает достигнутый FPS. Планировщик остается запущенным: запись
// заберет владение через Pause/Resume.
func runPreviewBench(gate *preview.Gate, engine *render.Engine, st *scene.State, player *audio.Player, seconds float64) *preview.Scheduler {
	if seconds <= 0 {
		return nil
	}

	var frames atomic.Int64
	scheduler := preview.NewScheduler(gate, engine, func(frame *image.RGBA, elapsedMs float64) {
		frames.Add(1)
	})
	if err := scheduler.Start(st); err != nil {
		log.Printf("[!] Предпросмотр не запустился: %v", err)
		return nil
	}
	if player != nil {
		if err := player.Play(); err != nil {
			log.Printf("[!] Звук предпросмотра: %v", err)
		}
	}

	time.Sleep(time.Duration(seconds * float64(time.Second)))
	if player != nil {
		player.Stop()
	}
	fmt.Printf("[*] Предпросмотр: %.1f FPS\n", float64(frames.Load())/seconds)
	return scheduler
}

func pickQuality(quality int, encoderName string) int {
	if quality != 0 {
		return quality
	}
	if encoderName == "auto" || encoderName == "" {
		encoderName = system.GetBestH264Encoder()
	}
	switch encoderName {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}

// demoDocument возвращает сцену с погодой, текстом и QR-логотипом,
// готовую к записи без внешних ассетов.
func demoDocument() *scene.Document {
	return &scene.Document{
		Version:     "1",
		Duration:    10,
		Aspect:      "16:9",
		Speed:       1,
		Blur:        40,
		Blend:       "screen",
		BlobOpacity: 0.85,
		Palette:     []string{"#ff6b9d", "#4ecdc4", "#ffe66d", "#6c5ce7"},
		Background:  scene.BackgroundDoc{Color: "#101018"},
		Weather:     scene.WeatherDoc{Type: "snow", Intensity: 5},
		Text: []scene.TextDoc{
			{Text: "Зимняя распродажа", Weight: 700, Size: 96, Color: "#ffffff", Shadow: true, X: 0.5, Y: 0.4, Opacity: 1},
			{Text: "до -50% на всё", Size: 48, Color: "#ffe66d", X: 0.5, Y: 0.55, Opacity: 0.9},
		},
		Logo: &scene.LogoDoc{QRURL: "https://example.com/sale", X: 0.88, Y: 0.85, Width: 0.12, Opacity: 0.9},
	}
}

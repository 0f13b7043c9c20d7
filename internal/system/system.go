package system

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось получить лимит файлов: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Не удалось установить лимит файлов: %v", err)
	}
}

var audioExtensions = []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"}
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".pdf"}
var sceneExtensions = []string{".yaml", ".yml"}

// FindLatestAudio ищет самый свежий аудио-файл в указанной директории.
func FindLatestAudio(dir string) (string, error) {
	return findLatest(dir, audioExtensions, "аудио-файлов")
}

// FindLatestImage ищет самое свежее фоновое изображение (или PDF) в директории.
func FindLatestImage(dir string) (string, error) {
	return findLatest(dir, imageExtensions, "изображений")
}

// FindLatestScene ищет самый свежий YAML-файл сцены в директории.
func FindLatestScene(dir string) (string, error) {
	return findLatest(dir, sceneExtensions, "файлов сцены")
}

func findLatest(dir string, extensions []string, kind string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		match := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				match = true
				break
			}
		}
		if !match {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("в папке %s не найдено %s", dir, kind)
	}

	return latestFile, nil
}

// GetAudioDuration получает длительность аудио через ffprobe.
func GetAudioDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration)
	if err != nil {
		return 0, err
	}

	return duration, nil
}

// GetAudioSampleRate получает частоту дискретизации первой аудио-дорожки
// через ffprobe. Нужна для расчета размера петли в aloop.
func GetAudioSampleRate(path string) (int, error) {
	cmd := exec.Command("ffprobe", "-v", "error", "-select_streams", "a:0", "-show_entries", "stream=sample_rate", "-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var rate int
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%d", &rate)
	if err != nil {
		return 0, err
	}

	return rate, nil
}

// GetBestH264Encoder перебирает аппаратные энкодеры в порядке приоритета и
// возвращает первый поддерживаемый; libx264 — гарантированный fallback.
// Вызывается один раз при старте захвата, не в процессе.
func GetBestH264Encoder() string {
	encoders := []string{
		"h264_videotoolbox",
		"h264_nvenc",
	}

	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}

	return "libx264"
}

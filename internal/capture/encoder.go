package capture

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// AudioSegment описывает окно [Start, End) исходной дорожки, которое
// зацикливается под всю длину видео.
type AudioSegment struct {
	Path       string
	Start      float64
	End        float64
	SampleRate int
}

// StreamSpec — параметры одного сеанса кодирования.
type StreamSpec struct {
	Width       int
	Height      int
	FPS         int
	Duration    float64
	OutputPath  string
	EncoderName string
	Quality     int
	Audio       *AudioSegment
}

// FrameSink принимает поток сырых RGBA-кадров. Start запускает сеанс,
// WriteFrame вызывается ровно FPS*Duration раз, Close дожидается
// финализации контейнера.
type FrameSink interface {
	Start(ctx context.Context, spec StreamSpec) error
	WriteFrame(pix []byte) error
	Close() error
}

// FFmpegSink кодирует кадры через ffmpeg: raw RGBA подается в stdin,
// аудио-окно обрезается и зацикливается фильтрами atrim+aloop, а
// -shortest останавливает дорожку по концу видеоряда.
type FFmpegSink struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
}

func (s *FFmpegSink) Start(ctx context.Context, spec StreamSpec) error {
	// Вывод прошлого сеанса не должен попадать в новые ошибки.
	s.stderr.Reset()

	args := buildStreamArgs(spec)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	cmd.Stderr = &s.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	return nil
}

func (s *FFmpegSink) WriteFrame(pix []byte) error {
	_, err := s.stdin.Write(pix)
	return err
}

func (s *FFmpegSink) Close() error {
	if s.cmd == nil {
		return nil
	}
	s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, s.stderr.String())
	}
	return nil
}

func buildStreamArgs(spec StreamSpec) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", spec.Width, spec.Height),
		"-framerate", fmt.Sprintf("%d", spec.FPS),
		"-i", "-",
	}

	if spec.Audio != nil {
		a := spec.Audio
		// Размер петли задается в сэмплах окна, иначе aloop крутит
		// только дефолтный нулевой буфер.
		loopSamples := int64((a.End - a.Start) * float64(a.SampleRate))
		args = append(args,
			"-i", a.Path,
			"-filter_complex", fmt.Sprintf(
				"[1:a]atrim=start=%f:end=%f,asetpts=PTS-STARTPTS,aloop=loop=-1:size=%d[aout]",
				a.Start, a.End, loopSamples,
			),
			"-map", "0:v",
			"-map", "[aout]",
			"-shortest",
		)
	}

	args = append(args,
		"-t", fmt.Sprintf("%f", spec.Duration),
		"-r", fmt.Sprintf("%d", spec.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", spec.EncoderName,
	)

	// Качество в зависимости от энкодера
	switch spec.EncoderName {
	case "h264_videotoolbox":
		bitrate := spec.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", spec.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", spec.Quality), "-preset", "medium")
	}

	args = append(args, spec.OutputPath)
	return args
}

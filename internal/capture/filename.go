package capture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/scene2video/internal/config"
)

// OutputName собирает имя файла по шаблону
// <base>-<формат с ':' заменённым на '-'>-<длительность>s.mp4.
func OutputName(base string, aspect config.AspectRatio, durationSec float64) string {
	ratio := strings.ReplaceAll(aspect.Name, ":", "-")
	return fmt.Sprintf("%s-%s-%ss.mp4", base, ratio, formatDuration(durationSec))
}

func formatDuration(sec float64) string {
	if sec == float64(int64(sec)) {
		return strconv.FormatInt(int64(sec), 10)
	}
	return strconv.FormatFloat(sec, 'g', -1, 64)
}

// SegmentLoops считает, сколько полных проходов аудио-окна уложится в
// видео заданной длительности. Хвост последней петли обрезает -shortest.
func SegmentLoops(videoSec, segmentSec float64) int {
	if segmentSec <= 0 {
		return 0
	}
	loops := int(videoSec / segmentSec)
	if float64(loops)*segmentSec < videoSec {
		loops++
	}
	return loops
}

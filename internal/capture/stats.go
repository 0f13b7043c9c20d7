package capture

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

func (p *Pipeline) printStats(outPath string, frames int, total time.Duration) {
	fps := float64(frames) / total.Seconds()

	var cpuLine, memLine string
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		cpuLine = fmt.Sprintf("%.1f%%", percents[0])
	} else {
		cpuLine = "n/a"
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		memLine = fmt.Sprintf("%.1f%% (%d MB used)", vm.UsedPercent, vm.Used/1024/1024)
	} else {
		memLine = "n/a"
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"CPU Load: %s\n"+
			"Memory: %s\n"+
			"----------------------------\n",
		p.cfg.BuildVersion, total.Seconds(), frames, fps, cpuLine, memLine,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Output: %s | Frames: %d | Total: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.cfg.BuildVersion,
		filepath.Base(outPath),
		frames,
		total.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}

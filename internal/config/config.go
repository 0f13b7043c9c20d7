package config

import "fmt"

type Config struct {
	ScenePath    string
	OutputVideo  string
	AudioPath    string
	FontPath     string
	CaptureFPS   int
	VideoEncoder string
	Quality      int
	ShowStats    bool
	BuildVersion string
}

// AspectRatio — фиксированный набор пропорций холста. Размер кадра всегда
// берется из пресета, произвольные разрешения не поддерживаются.
type AspectRatio struct {
	Name   string
	Width  int
	Height int
}

var aspectPresets = []AspectRatio{
	{Name: "16:9", Width: 1920, Height: 1080},
	{Name: "9:16", Width: 1080, Height: 1920},
	{Name: "1:1", Width: 1080, Height: 1080},
	{Name: "4:5", Width: 1080, Height: 1350},
}

// AspectByName resolves one of the preset ratios ("16:9", "9:16", "1:1", "4:5").
func AspectByName(name string) (AspectRatio, error) {
	for _, a := range aspectPresets {
		if a.Name == name {
			return a, nil
		}
	}
	return AspectRatio{}, fmt.Errorf("неизвестный пресет формата: %q", name)
}

// AspectNames lists the supported presets in declaration order.
func AspectNames() []string {
	names := make([]string, len(aspectPresets))
	for i, a := range aspectPresets {
		names[i] = a.Name
	}
	return names
}

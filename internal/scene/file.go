package scene

import (
	"fmt"
	"image/color"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/scene2video/internal/config"
)

// Document is the on-disk YAML form of a scene. It carries file references
// instead of decoded bitmaps; the caller resolves those and attaches the
// results to the built State.
type Document struct {
	Version     string        `yaml:"version"`
	Duration    float64       `yaml:"duration"`
	Aspect      string        `yaml:"aspect"`
	Speed       float64       `yaml:"speed"`
	Blur        float64       `yaml:"blur"`
	Blend       string        `yaml:"blend"`
	BlobOpacity float64       `yaml:"blob_opacity"`
	Palette     []string      `yaml:"palette"`
	Background  BackgroundDoc `yaml:"background"`
	Weather     WeatherDoc    `yaml:"weather"`
	Text        []TextDoc     `yaml:"text"`
	Logo        *LogoDoc      `yaml:"logo,omitempty"`
}

type BackgroundDoc struct {
	Color string `yaml:"color,omitempty"`
	Image string `yaml:"image,omitempty"`
}

type WeatherDoc struct {
	Type      string `yaml:"type"`
	Intensity int    `yaml:"intensity,omitempty"`
}

type TextDoc struct {
	Text    string  `yaml:"text"`
	Font    string  `yaml:"font,omitempty"`
	Weight  int     `yaml:"weight,omitempty"`
	Italic  bool    `yaml:"italic,omitempty"`
	Size    float64 `yaml:"size"`
	Align   string  `yaml:"align,omitempty"`
	Color   string  `yaml:"color"`
	Shadow  bool    `yaml:"shadow,omitempty"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Opacity float64 `yaml:"opacity"`
}

type LogoDoc struct {
	Image   string  `yaml:"image,omitempty"`
	QRURL   string  `yaml:"qr_url,omitempty"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Width   float64 `yaml:"width"`
	Opacity float64 `yaml:"opacity"`
}

// WriteDocument writes a scene document to a YAML file.
func WriteDocument(doc *Document, path string) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadDocument reads a scene document from a YAML file.
func ReadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// BuildState assembles a renderable State from the document. Bitmap layers
// (background image, logo) and the audio trim window are attached by the
// caller afterwards; a document palette of ["auto"] is also resolved by the
// caller from the background bitmap.
func (d *Document) BuildState(rng *rand.Rand) (*State, error) {
	aspect, err := config.AspectByName(d.Aspect)
	if err != nil {
		return nil, err
	}
	blend, err := BlendModeByName(d.Blend)
	if err != nil {
		return nil, err
	}

	st := &State{
		Duration:    d.Duration,
		Aspect:      aspect,
		Speed:       d.Speed,
		BlurRadius:  d.Blur,
		Blend:       blend,
		BlobOpacity: d.BlobOpacity,
	}

	for i, hex := range d.Palette {
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("палитра, цвет %d: %v", i, err)
		}
		st.Palette = append(st.Palette, c)
	}

	if d.Background.Color != "" {
		c, err := ParseHexColor(d.Background.Color)
		if err != nil {
			return nil, fmt.Errorf("цвет фона: %v", err)
		}
		st.Background = SolidBackground{Color: c}
	}

	switch d.Weather.Type {
	case "", "none":
	case "snow":
		st.Weather = Snow{Level: d.Weather.Intensity}
	case "rain":
		st.Weather = Rain{Level: d.Weather.Intensity}
	default:
		return nil, fmt.Errorf("неизвестный тип погоды: %q", d.Weather.Type)
	}

	for i, td := range d.Text {
		layer, err := td.layer()
		if err != nil {
			return nil, fmt.Errorf("слой текста %d: %v", i, err)
		}
		st.TextLayers = append(st.TextLayers, layer)
	}

	if len(st.Palette) >= 2 {
		st.Blobs = GenerateBlobs(st.Palette, rng)
	}

	return st, nil
}

func (td TextDoc) layer() (TextLayer, error) {
	c, err := ParseHexColor(td.Color)
	if err != nil {
		return TextLayer{}, err
	}
	var align Alignment
	switch td.Align {
	case "", "center":
		align = AlignCenter
	case "left":
		align = AlignLeft
	case "right":
		align = AlignRight
	default:
		return TextLayer{}, fmt.Errorf("неизвестное выравнивание: %q", td.Align)
	}
	weight := td.Weight
	if weight == 0 {
		weight = 400
	}
	return TextLayer{
		Text:    td.Text,
		Font:    td.Font,
		Weight:  weight,
		Italic:  td.Italic,
		Size:    td.Size,
		Align:   align,
		Color:   c,
		Shadow:  td.Shadow,
		AnchorX: td.X,
		AnchorY: td.Y,
		Opacity: td.Opacity,
	}, nil
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	c := color.NRGBA{A: 0xff}
	if len(s) != 6 && len(s) != 8 {
		return c, fmt.Errorf("некорректный hex-цвет: %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return c, fmt.Errorf("некорректный hex-цвет: %q", s)
	}
	if len(s) == 8 {
		c.A = uint8(v)
		v >>= 8
	}
	c.B = uint8(v)
	c.G = uint8(v >> 8)
	c.R = uint8(v >> 16)
	return c, nil
}

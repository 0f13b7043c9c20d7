package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontSet resolves a text layer's font identity to a parsed font. Loading
// font files is the caller's job; the set only stores parsed fonts and
// caches sized faces.
type FontSet struct {
	mu    sync.Mutex
	fonts map[string]*sfnt.Font
	faces map[faceKey]font.Face
}

type faceKey struct {
	name string
	size float64
}

// NewFontSet returns a set preloaded with the Go fonts as the "default"
// family in its four styles, so text renders even when no fonts were
// registered externally.
func NewFontSet() (*FontSet, error) {
	fs := &FontSet{
		fonts: make(map[string]*sfnt.Font),
		faces: make(map[faceKey]font.Face),
	}
	defaults := map[string][]byte{
		variantKey("default", 400, false): goregular.TTF,
		variantKey("default", 700, false): gobold.TTF,
		variantKey("default", 400, true):  goitalic.TTF,
		variantKey("default", 700, true):  gobolditalic.TTF,
	}
	for name, data := range defaults {
		if err := fs.Register(name, data); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// Register parses raw TTF/OTF bytes under the given key. Keys follow
// variantKey's "name-weight[-italic]" scheme.
func (fs *FontSet) Register(key string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("ошибка разбора шрифта %q: %w", key, err)
	}
	fs.mu.Lock()
	fs.fonts[key] = f
	fs.mu.Unlock()
	return nil
}

func variantKey(name string, weight int, italic bool) string {
	style := ""
	if italic {
		style = "-italic"
	}
	bucket := 400
	if weight >= 600 {
		bucket = 700
	}
	return fmt.Sprintf("%s-%d%s", name, bucket, style)
}

// Face returns a cached sized face for a layer's font identity, falling
// back to the closest registered variant and finally to the default family.
func (fs *FontSet) Face(name string, weight int, italic bool, size float64) (font.Face, error) {
	if name == "" {
		name = "default"
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	var parsed *sfnt.Font
	for _, key := range []string{
		variantKey(name, weight, italic),
		variantKey(name, weight, false),
		variantKey(name, 400, false),
		variantKey("default", weight, italic),
		variantKey("default", 400, false),
	} {
		if f, ok := fs.fonts[key]; ok {
			parsed = f
			break
		}
	}
	if parsed == nil {
		return nil, fmt.Errorf("шрифт %q не зарегистрирован", name)
	}

	ck := faceKey{name: variantKey(name, weight, italic), size: size}
	if face, ok := fs.faces[ck]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	fs.faces[ck] = face
	return face, nil
}

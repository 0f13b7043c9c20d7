// Package source turns external references (image files, PDF pages, QR
// payloads) into decoded bitmaps for the background and logo layers. The
// render core never touches the filesystem itself.
package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	qrcode "github.com/skip2/go-qrcode"
)

// backgroundDPI controls the rasterization density for PDF-backed
// backgrounds; high enough that cover placement never upscales.
const backgroundDPI = 200

// LoadBitmap decodes an image file. A .pdf path is rasterized at its first
// page, so a slide deck cover can serve as the scene background.
func LoadBitmap(path string) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return loadPDFPage(path, 0)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("ошибка декодирования %s: %w", path, err)
	}
	return img, nil
}

func loadPDFPage(path string, page int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page >= doc.NumPage() {
		return nil, fmt.Errorf("в PDF %s нет страницы %d", path, page)
	}
	return doc.ImageDPI(page, backgroundDPI)
}

// QRBitmap renders a QR code for the payload, sized in pixels. Used by the
// logo slot when a scene links to a URL instead of shipping a bitmap.
func QRBitmap(payload string, size int) (image.Image, error) {
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации QR: %w", err)
	}
	return q.Image(size), nil
}

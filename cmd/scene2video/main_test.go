package main

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/scene2video/internal/scene"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestAttachBackgroundFallbackDir(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "latest.png"))

	st := &scene.State{}
	doc := &scene.Document{}
	bg := attachBackground(st, doc, "", dir)
	if bg == nil {
		t.Fatal("fallback directory image was not picked up")
	}
	if _, ok := st.Background.(scene.BitmapBackground); !ok {
		t.Fatalf("background = %T, want BitmapBackground", st.Background)
	}
}

func TestAttachBackgroundKeepsSolidColor(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "latest.png"))

	// Сцена с явным цветом фона не подменяется файлом из папки.
	st := &scene.State{Background: scene.SolidBackground{}}
	doc := &scene.Document{Background: scene.BackgroundDoc{Color: "#101018"}}
	if bg := attachBackground(st, doc, "", dir); bg != nil {
		t.Fatal("solid-color scene was overridden by the fallback directory")
	}
	if _, ok := st.Background.(scene.SolidBackground); !ok {
		t.Fatalf("background = %T, want SolidBackground", st.Background)
	}
}

func TestAttachBackgroundOverrideFlag(t *testing.T) {
	dir := t.TempDir()
	writeTestPNG(t, filepath.Join(dir, "older.png"))
	override := filepath.Join(t.TempDir(), "flag.png")
	writeTestPNG(t, override)

	st := &scene.State{}
	doc := &scene.Document{Background: scene.BackgroundDoc{Image: "missing.png"}}
	if bg := attachBackground(st, doc, override, dir); bg == nil {
		t.Fatal("override flag image was not loaded")
	}
}

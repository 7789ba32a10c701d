package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string, w, h int, fill color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create test image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
}

func TestLoadImageForAnalyze(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.png")
	writeTestPNG(t, path, 8, 8, color.NRGBA{R: 10, G: 20, B: 30, A: 255})

	img, err := loadImageForAnalyze(path)
	if err != nil {
		t.Fatalf("loadImageForAnalyze failed: %v", err)
	}
	if img.Width != 8 || img.Height != 8 {
		t.Errorf("dimensions = %dx%d, want 8x8", img.Width, img.Height)
	}
}

func TestLoadImageForAnalyze_MissingFile(t *testing.T) {
	if _, err := loadImageForAnalyze("/nonexistent/path.png"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestSavePNGRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "out.png")

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	if err := savePNG(img, path); err != nil {
		t.Fatalf("savePNG failed: %v", err)
	}

	loaded, err := loadImageForAnalyze(path)
	if err != nil {
		t.Fatalf("failed to reload saved image: %v", err)
	}
	if loaded.Width != 4 || loaded.Height != 4 {
		t.Errorf("dimensions = %dx%d, want 4x4", loaded.Width, loaded.Height)
	}
}

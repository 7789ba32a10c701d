package gridfit

import (
	"image"
	"image/color"
	"testing"
)

func TestFromImageConvertsStraightRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	src.Set(1, 0, color.NRGBA{R: 0, G: 255, B: 0, A: 255})
	src.Set(0, 1, color.NRGBA{R: 0, G: 0, B: 255, A: 255})
	src.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	img := FromImage(src)
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("size = (%d, %d), want (2, 2)", img.Width, img.Height)
	}

	r, g, b := img.At(0, 0)
	if r != 1 || g != 0 || b != 0 {
		t.Errorf("At(0,0) = (%v,%v,%v), want (1,0,0)", r, g, b)
	}

	r, g, b = img.At(1, 1)
	if r != 1 || g != 1 || b != 1 {
		t.Errorf("At(1,1) = (%v,%v,%v), want (1,1,1)", r, g, b)
	}
}

func TestFromImageUnpremultipliesTranslucentPixels(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})

	img := FromImage(src)
	r, g, b := img.At(0, 0)
	if r != 1 || g != 0 || b != 0 {
		t.Errorf("At(0,0) = (%v,%v,%v), want (1,0,0); a premultiplied read would darken R", r, g, b)
	}
	if got, want := img.Pix[3], 128.0/255; got != want {
		t.Errorf("alpha = %v, want %v", got, want)
	}
}

func TestEdgeSignalSum(t *testing.T) {
	s := EdgeSignal{1, 2, 3.5}
	if got := s.Sum(); got != 6.5 {
		t.Errorf("Sum() = %v, want 6.5", got)
	}
}

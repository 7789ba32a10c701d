package server

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/cwbudde/gridfit/internal/gridfit"
	"github.com/cwbudde/gridfit/internal/store"
)

// loadImage decodes the image at path and converts it into the
// gridfit pipeline's native representation.
func loadImage(path string) (*gridfit.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return gridfit.FromImage(img), nil
}

// resultFromAnalysis converts one image's fitted axes into the
// persisted per-image result shape.
func resultFromAnalysis(path string, result *gridfit.Result) store.ImageResult {
	return store.ImageResult{
		ImagePath:   path,
		ScaleX:      result.X.Scale,
		OffsetX:     result.X.Offset,
		ConfidenceX: result.X.Confidence,
		ScaleY:      result.Y.Scale,
		OffsetY:     result.Y.Offset,
		ConfidenceY: result.Y.Confidence,
	}
}

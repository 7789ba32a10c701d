// Package gridfit recovers the native pixel grid of an upscaled raster
// image: the per-axis scale and sub-pixel offset of the grid lines that
// the image was resampled from, and the machinery to rebuild a low
// resolution image from that grid.
package gridfit

import (
	"image"
	"image/color"
)

// Image is the immutable input to the pipeline. Pixels are straight
// (non-premultiplied) RGBA, channel values in [0,1]. Callers holding
// image.Image values should convert with FromImage.
type Image struct {
	Width, Height int
	Pix           []float64 // row-major, 4 floats per pixel (R,G,B,A)
}

// FromImage converts a standard library image into an Image, ignoring
// color-space decisions (the caller's loader owns gamma/profile handling).
// color.Color.RGBA() always returns alpha-premultiplied values regardless of
// the source image's storage format, so every pixel is run through
// color.NRGBAModel to recover the straight RGBA this package's math assumes.
func FromImage(img image.Image) *Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := &Image{Width: w, Height: h, Pix: make([]float64, w*h*4)}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			i := (y*w + x) * 4
			out.Pix[i+0] = float64(c.R) / 255
			out.Pix[i+1] = float64(c.G) / 255
			out.Pix[i+2] = float64(c.B) / 255
			out.Pix[i+3] = float64(c.A) / 255
		}
	}
	return out
}

// At returns the straight RGB at (x, y); alpha is ignored by the pipeline.
func (im *Image) At(x, y int) (r, g, b float64) {
	i := (y*im.Width + x) * 4
	return im.Pix[i+0], im.Pix[i+1], im.Pix[i+2]
}

// ToNRGBA renders the image back into a standard library image.NRGBA so
// callers can encode it with image/png or similar.
func (im *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.Width, im.Height))
	for y := 0; y < im.Height; y++ {
		for x := 0; x < im.Width; x++ {
			i := (y*im.Width + x) * 4
			o := out.PixOffset(x, y)
			out.Pix[o+0] = clampByte(im.Pix[i+0])
			out.Pix[o+1] = clampByte(im.Pix[i+1])
			out.Pix[o+2] = clampByte(im.Pix[i+2])
			out.Pix[o+3] = clampByte(im.Pix[i+3])
		}
	}
	return out
}

func clampByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// EdgeSignal is a 1-D nonnegative edge-energy signal produced by the
// EdgeProjector, one per axis.
type EdgeSignal []float64

// Sum returns the total edge energy carried by the signal.
func (s EdgeSignal) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// AxisEstimate is the result of fitting a single axis: how many
// high-resolution pixels make up one logical pixel (Scale), where the
// first grid line falls modulo Scale (Offset), and how confidently the
// fundamental frequency was identified (Confidence, uncalibrated).
type AxisEstimate struct {
	Scale      float64
	Offset     float64
	Confidence float64
}

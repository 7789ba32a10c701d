package gridfit

import "math"

// SamplingMode selects how a logical cell's representative color is
// derived from the high-resolution pixels that fall inside it.
type SamplingMode int

const (
	// SampleNearestCenter takes the single high-resolution pixel
	// closest to the cell's center.
	SampleNearestCenter SamplingMode = iota
	// SampleBoxAverage averages every high-resolution pixel within a
	// 0.3*Scale radius box around the cell's center, which smooths
	// out resampling ringing that a single-pixel sample would pick up.
	SampleBoxAverage
)

// boxAverageRadiusRatio sizes the averaging box relative to the
// fitted scale: small enough to stay inside one logical cell, large
// enough to average away a few pixels of resampling noise.
const boxAverageRadiusRatio = 0.3

// Reconstructor rebuilds a low-resolution image, or a full-resolution
// preview, from a high-resolution Image and a fitted GridModel.
type Reconstructor struct{}

// NewReconstructor creates a Reconstructor.
func NewReconstructor() *Reconstructor {
	return &Reconstructor{}
}

// LowRes renders the image down to its native resolution: one output
// pixel per logical grid cell.
func (rc *Reconstructor) LowRes(img *Image, grid *GridModel, mode SamplingMode) *Image {
	cols, rows := grid.LowResSize()
	colOrigin, rowOrigin := grid.ColumnOrigin(), grid.RowOrigin()

	out := &Image{Width: cols, Height: rows, Pix: make([]float64, cols*rows*4)}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			r, g, b := sampleCell(img, grid, col+colOrigin, row+rowOrigin, mode)
			i := (row*cols + col) * 4
			out.Pix[i+0] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = 1
		}
	}
	return out
}

// Preview renders a full-resolution image where every high-resolution
// pixel is replaced by its logical cell's representative color — a
// flattened view of what the fitted grid believes the native image
// looks like, upsampled back to the original canvas size. Each cell's
// color is computed once and memoized, since many high-resolution
// pixels share the same cell.
func (rc *Reconstructor) Preview(img *Image, grid *GridModel, mode SamplingMode) *Image {
	out := &Image{Width: img.Width, Height: img.Height, Pix: make([]float64, img.Width*img.Height*4)}

	type cellKey struct{ col, row int }
	type cellColor struct{ r, g, b float64 }
	cache := make(map[cellKey]cellColor)

	for y := 0; y < img.Height; y++ {
		row := grid.RowCell(y)
		for x := 0; x < img.Width; x++ {
			col := grid.ColumnCell(x)
			key := cellKey{col, row}

			c, ok := cache[key]
			if !ok {
				r, g, b := sampleCell(img, grid, col, row, mode)
				c = cellColor{r, g, b}
				cache[key] = c
			}

			i := (y*img.Width + x) * 4
			out.Pix[i+0] = c.r
			out.Pix[i+1] = c.g
			out.Pix[i+2] = c.b
			out.Pix[i+3] = 1
		}
	}
	return out
}

// sampleCell derives the representative color for logical cell
// (col, row) according to mode.
func sampleCell(img *Image, grid *GridModel, col, row int, mode SamplingMode) (r, g, b float64) {
	cx, cy := grid.ColumnCenter(col), grid.RowCenter(row)

	if mode == SampleBoxAverage {
		if r, g, b, ok := boxAverage(img, cx, cy, grid.X.Scale, grid.Y.Scale); ok {
			return r, g, b
		}
		// Empty intersection with the image bounds: fall back to
		// nearest-center sampling rather than return a blank pixel.
	}
	return nearestSample(img, cx, cy)
}

// nearestSample returns the color of the high-resolution pixel
// closest to (cx, cy), clamped to the image bounds.
func nearestSample(img *Image, cx, cy float64) (r, g, b float64) {
	x := clampInt(int(math.Round(cx)), 0, img.Width-1)
	y := clampInt(int(math.Round(cy)), 0, img.Height-1)
	return img.At(x, y)
}

// boxAverage averages every pixel within boxAverageRadiusRatio·scale
// of (cx, cy) on each axis. ok is false when the box falls entirely
// outside the image, which can happen for cells clipped at an edge.
func boxAverage(img *Image, cx, cy, scaleX, scaleY float64) (r, g, b float64, ok bool) {
	rx := boxAverageRadiusRatio * scaleX
	ry := boxAverageRadiusRatio * scaleY

	x0 := max(int(math.Ceil(cx-rx)), 0)
	x1 := min(int(math.Floor(cx+rx)), img.Width-1)
	y0 := max(int(math.Ceil(cy-ry)), 0)
	y1 := min(int(math.Floor(cy+ry)), img.Height-1)

	if x1 < x0 || y1 < y0 {
		return 0, 0, 0, false
	}

	// Running mean: a box of identical pixels yields that exact color.
	var meanR, meanG, meanB float64
	n := 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			pr, pg, pb := img.At(x, y)
			n++
			k := float64(n)
			meanR += (pr - meanR) / k
			meanG += (pg - meanG) / k
			meanB += (pb - meanB) / k
		}
	}
	if n == 0 {
		return 0, 0, 0, false
	}
	return meanR, meanG, meanB, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

package gridfit

// EdgeProjector reduces a 2-D image to two 1-D edge-energy signals, one
// per axis. A true integer upsampling replicates whole pixels, so a
// column boundary in the native image produces an entire column of
// high-resolution edges; summing |Δcolor| per column turns that into an
// approximate comb train with period equal to the native scale.
type EdgeProjector interface {
	// Project computes col (length Width) and row (length Height) edge
	// signals for the image.
	Project(img *Image) (col, row EdgeSignal)
}

// CPUProjector is the portable EdgeProjector implementation. The
// per-row summation that builds col is dispatched to an unrolled scalar
// kernel chosen at init time (see edge_scalar.go); the per-column pass
// that builds row uses a single plain loop.
type CPUProjector struct{}

// NewCPUProjector creates a CPU-based EdgeProjector.
func NewCPUProjector() *CPUProjector {
	return &CPUProjector{}
}

// Project implements EdgeProjector. Column 0 and row 0 are always 0
// because differences are left-clamped: there is no pixel to the left
// of column 0 or above row 0, so the clamp reads the pixel itself and
// the difference is zero.
func (p *CPUProjector) Project(img *Image) (col, row EdgeSignal) {
	w, h := img.Width, img.Height
	col = make(EdgeSignal, w)
	row = make(EdgeSignal, h)

	for y := 0; y < h; y++ {
		fastEdgeRowDiff(img.Pix[y*w*4:(y+1)*w*4], w, col)
	}
	for x := 0; x < w; x++ {
		fastEdgeColumnDiff(img.Pix, w, h, x, row)
	}

	return col, row
}

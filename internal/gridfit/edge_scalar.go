package gridfit

import (
	"log/slog"

	"golang.org/x/sys/cpu"
)

// Edge-difference summation kernel selection.
//
// The EdgeProjector pass is the only step that scales with W·H (§5), so
// its inner loop is worth tuning the way the teacher tunes its SSD/SAD
// cost kernels (sad.go, ssd.go): detect CPU features once at init and
// pick the scalar variant with the best instruction-level parallelism
// for the detected core. There is no hand-written SIMD assembly here —
// unlike the teacher's sadAVX2/ssdAVX2, which call into .s files this
// module does not carry — so AVX2/NEON only select among pure-Go
// unrolled loops, mirroring the teacher's own scalar fallback variants
// in ssd_scalar.go.

// EdgeBackend indicates which scalar variant is active for edge-diff summation.
type EdgeBackend int

const (
	EdgeBackendNaive EdgeBackend = iota
	EdgeBackendUnrolled4
	EdgeBackendUnrolled8
)

func (b EdgeBackend) String() string {
	switch b {
	case EdgeBackendUnrolled8:
		return "unrolled8"
	case EdgeBackendUnrolled4:
		return "unrolled4"
	default:
		return "naive"
	}
}

// ActiveEdgeBackend reports which variant was selected for this process.
var ActiveEdgeBackend EdgeBackend

func init() {
	switch {
	case cpu.X86.HasAVX2:
		ActiveEdgeBackend = EdgeBackendUnrolled8
		slog.Debug("edge-diff kernel initialized", "backend", "unrolled8", "reason", "AVX2-class core")
	case cpu.ARM64.HasASIMD:
		ActiveEdgeBackend = EdgeBackendUnrolled4
		slog.Debug("edge-diff kernel initialized", "backend", "unrolled4", "reason", "NEON-class core")
	default:
		ActiveEdgeBackend = EdgeBackendNaive
		slog.Debug("edge-diff kernel initialized", "backend", "naive", "reason", "no wide-SIMD hint")
	}
}

// fastEdgeRowDiff accumulates col[x] += |I(x)-I(x-1)|₁ for one row of
// pixels (rowPix holds w pixels, 4 floats each) into col.
func fastEdgeRowDiff(rowPix []float64, w int, col EdgeSignal) {
	switch ActiveEdgeBackend {
	case EdgeBackendUnrolled8:
		edgeRowDiffUnrolled8(rowPix, w, col)
	case EdgeBackendUnrolled4:
		edgeRowDiffUnrolled4(rowPix, w, col)
	default:
		edgeRowDiffNaive(rowPix, w, col)
	}
}

// edgeRowDiffNaive is the simple reference implementation.
func edgeRowDiffNaive(rowPix []float64, w int, col EdgeSignal) {
	for x := 0; x < w; x++ {
		px := x * 4
		ppx := px
		if x > 0 {
			ppx = px - 4
		}
		col[x] += l1(rowPix[px+0], rowPix[px+1], rowPix[px+2], rowPix[ppx+0], rowPix[ppx+1], rowPix[ppx+2])
	}
}

// edgeRowDiffUnrolled4 processes four columns per iteration once past
// the left-clamped column 0.
func edgeRowDiffUnrolled4(rowPix []float64, w int, col EdgeSignal) {
	if w == 0 {
		return
	}
	col[0] += 0 // left-clamped: diff with itself is zero

	x := 1
	unrollEnd := 1 + ((w-1)/4)*4
	for ; x < unrollEnd; x += 4 {
		i0 := x * 4
		col[x+0] += l1(rowPix[i0+0], rowPix[i0+1], rowPix[i0+2], rowPix[i0-4], rowPix[i0-3], rowPix[i0-2])
		i1 := i0 + 4
		col[x+1] += l1(rowPix[i1+0], rowPix[i1+1], rowPix[i1+2], rowPix[i1-4], rowPix[i1-3], rowPix[i1-2])
		i2 := i1 + 4
		col[x+2] += l1(rowPix[i2+0], rowPix[i2+1], rowPix[i2+2], rowPix[i2-4], rowPix[i2-3], rowPix[i2-2])
		i3 := i2 + 4
		col[x+3] += l1(rowPix[i3+0], rowPix[i3+1], rowPix[i3+2], rowPix[i3-4], rowPix[i3-3], rowPix[i3-2])
	}
	for ; x < w; x++ {
		i := x * 4
		col[x] += l1(rowPix[i+0], rowPix[i+1], rowPix[i+2], rowPix[i-4], rowPix[i-3], rowPix[i-2])
	}
}

// edgeRowDiffUnrolled8 processes eight columns per iteration; same
// result as the 4-wide variant, more instruction-level parallelism.
func edgeRowDiffUnrolled8(rowPix []float64, w int, col EdgeSignal) {
	if w == 0 {
		return
	}
	col[0] += 0

	x := 1
	unrollEnd := 1 + ((w-1)/8)*8
	for ; x < unrollEnd; x += 8 {
		for k := 0; k < 8; k++ {
			i := (x + k) * 4
			col[x+k] += l1(rowPix[i+0], rowPix[i+1], rowPix[i+2], rowPix[i-4], rowPix[i-3], rowPix[i-2])
		}
	}
	for ; x < w; x++ {
		i := x * 4
		col[x] += l1(rowPix[i+0], rowPix[i+1], rowPix[i+2], rowPix[i-4], rowPix[i-3], rowPix[i-2])
	}
}

// fastEdgeColumnDiff accumulates row[y] += |I(y)-I(y-1)|₁ for the
// fixed column x across all rows of the image (pix is the full
// row-major buffer, stride w*4 per row).
func fastEdgeColumnDiff(pix []float64, w, h, x int, row EdgeSignal) {
	stride := w * 4
	base := x * 4
	prev := base
	for y := 0; y < h; y++ {
		i := y*stride + base
		row[y] += l1(pix[i+0], pix[i+1], pix[i+2], pix[prev+0], pix[prev+1], pix[prev+2])
		prev = i
	}
}

// l1 computes the L1 norm of the RGB difference between two pixels.
func l1(r, g, b, pr, pg, pb float64) float64 {
	return abs(r-pr) + abs(g-pg) + abs(b-pb)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

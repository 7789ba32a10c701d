package gridfit

import (
	"errors"
	"fmt"
	"log/slog"
)

// DefaultMaxScale is the maxScale used when the caller does not supply one.
const DefaultMaxScale = 16

// ErrImageTooSmall is returned when an image has fewer than two pixels
// on either axis — there is no grid to recover.
var ErrImageTooSmall = errors.New("image must be at least 2x2")

// ErrInvalidMaxScale is returned when maxScale is out of the valid range.
var ErrInvalidMaxScale = errors.New("maxScale must be >= 2")

// Options configures one analysis run.
type Options struct {
	// MaxScale bounds the scale search band; must be >= 2. Zero selects DefaultMaxScale.
	MaxScale int
	// SampleCenterOnly selects nearest-center sampling over box averaging
	// when the Reconstructor derives a cell's representative color.
	SampleCenterOnly bool
	// ProjectorBackend selects the EdgeProjector implementation ("cpu", "opencl").
	// Empty selects the CPU backend.
	ProjectorBackend string
}

func (o Options) maxScale() int {
	if o.MaxScale == 0 {
		return DefaultMaxScale
	}
	return o.MaxScale
}

func (o Options) samplingMode() SamplingMode {
	if o.SampleCenterOnly {
		return SampleNearestCenter
	}
	return SampleBoxAverage
}

// Result is the outcome of fitting both axes of one image.
type Result struct {
	Col, Row EdgeSignal
	X, Y     AxisEstimate
	Grid     *GridModel
}

// Analyze runs the full EdgeProjector -> PeriodicityFitter -> GridModel
// pipeline on img and returns the fitted grid without materializing any
// reconstructed output.
func Analyze(img *Image, opts Options) (*Result, error) {
	if img.Width < 2 || img.Height < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrImageTooSmall, img.Width, img.Height)
	}
	maxScale := opts.maxScale()
	if maxScale < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxScale, maxScale)
	}

	projector, cleanup, err := NewProjectorForBackend(opts.ProjectorBackend)
	if err != nil {
		return nil, fmt.Errorf("acquire edge projector: %w", err)
	}
	defer cleanup()

	slog.Debug("analyzing image", "width", img.Width, "height", img.Height, "maxScale", maxScale)

	col, row := projector.Project(img)

	fitter := NewPeriodicityFitter()
	x := fitter.Fit(col, maxScale)
	y := fitter.Fit(row, maxScale)

	slog.Info("axis fit complete",
		"scaleX", x.Scale, "offsetX", x.Offset, "confidenceX", x.Confidence,
		"scaleY", y.Scale, "offsetY", y.Offset, "confidenceY", y.Confidence,
	)

	grid := NewGridModel(img.Width, img.Height, x, y)

	return &Result{Col: col, Row: row, X: x, Y: y, Grid: grid}, nil
}

// Reconstruction bundles both Reconstructor outputs for a fitted image.
type Reconstruction struct {
	Preview *Image
	LowRes  *Image
}

// AnalyzeAndReconstruct runs Analyze and then derives both the
// full-resolution preview and the native-resolution output from the
// fitted grid.
func AnalyzeAndReconstruct(img *Image, opts Options) (*Result, *Reconstruction, error) {
	result, err := Analyze(img, opts)
	if err != nil {
		return nil, nil, err
	}

	rc := NewReconstructor()
	mode := opts.samplingMode()

	recon := &Reconstruction{
		Preview: rc.Preview(img, result.Grid, mode),
		LowRes:  rc.LowRes(img, result.Grid, mode),
	}

	slog.Debug("reconstruction complete",
		"lowResWidth", recon.LowRes.Width, "lowResHeight", recon.LowRes.Height,
		"sampleCenterOnly", opts.SampleCenterOnly,
	)

	return result, recon, nil
}

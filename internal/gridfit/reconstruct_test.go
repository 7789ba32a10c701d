package gridfit

import "testing"

func TestReconstructorLowResMatchesGridSize(t *testing.T) {
	img := solidImage(40, 20, 0.2, 0.4, 0.6)
	axis := AxisEstimate{Scale: 4, Offset: 0}
	grid := NewGridModel(img.Width, img.Height, axis, axis)

	out := NewReconstructor().LowRes(img, grid, SampleNearestCenter)

	cols, rows := grid.LowResSize()
	if out.Width != cols || out.Height != rows {
		t.Errorf("LowRes size = (%d, %d), want (%d, %d)", out.Width, out.Height, cols, rows)
	}
}

func TestReconstructorLowResFlatImageIsUniform(t *testing.T) {
	img := solidImage(32, 16, 0.1, 0.2, 0.3)
	axis := AxisEstimate{Scale: 4, Offset: 0}
	grid := NewGridModel(img.Width, img.Height, axis, axis)

	for _, mode := range []SamplingMode{SampleNearestCenter, SampleBoxAverage} {
		out := NewReconstructor().LowRes(img, grid, mode)
		for i := 0; i < out.Width*out.Height; i++ {
			r, g, b := out.Pix[i*4+0], out.Pix[i*4+1], out.Pix[i*4+2]
			if r != 0.1 || g != 0.2 || b != 0.3 {
				t.Errorf("pixel %d = (%v,%v,%v), want (0.1,0.2,0.3) for a flat source", i, r, g, b)
			}
		}
	}
}

func TestReconstructorPreviewSameSizeAsSource(t *testing.T) {
	img := solidImage(24, 18, 0.5, 0.5, 0.5)
	axis := AxisEstimate{Scale: 6, Offset: 1}
	grid := NewGridModel(img.Width, img.Height, axis, axis)

	out := NewReconstructor().Preview(img, grid, SampleBoxAverage)
	if out.Width != img.Width || out.Height != img.Height {
		t.Errorf("Preview size = (%d, %d), want (%d, %d)", out.Width, out.Height, img.Width, img.Height)
	}
}

func TestBoxAverageFallsBackToNearestAtEdge(t *testing.T) {
	img := solidImage(10, 10, 0.7, 0.7, 0.7)
	// Cell (-1, -1) spans [-4, 0) on both axes; its averaging box lies
	// wholly outside the image, so sampling falls back to pixel (0, 0).
	r, g, b := sampleCell(img, NewGridModel(10, 10, AxisEstimate{Scale: 4, Offset: 0}, AxisEstimate{Scale: 4, Offset: 0}), -1, -1, SampleBoxAverage)

	if r != 0.7 || g != 0.7 || b != 0.7 {
		t.Errorf("sampleCell = (%v,%v,%v), want (0.7,0.7,0.7)", r, g, b)
	}
}

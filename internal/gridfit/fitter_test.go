package gridfit

import (
	"math"
	"testing"
)

func combSignal(n, period, phase int) EdgeSignal {
	s := make(EdgeSignal, n)
	for i := phase; i < n; i += period {
		s[i] = 1
	}
	return s
}

func TestPeriodicityFitterDegenerateSignal(t *testing.T) {
	signal := make(EdgeSignal, 64)
	est := NewPeriodicityFitter().Fit(signal, 16)

	if est.Scale != 1 || est.Offset != 0 || est.Confidence != 0 {
		t.Errorf("Fit(flat) = %+v, want {1, 0, 0}", est)
	}
}

func TestPeriodicityFitterRecoversScale(t *testing.T) {
	const n, period, phase = 128, 8, 2
	signal := combSignal(n, period, phase)

	est := NewPeriodicityFitter().Fit(signal, 16)

	if math.Abs(est.Scale-period) > 0.5 {
		t.Errorf("Scale = %v, want close to %v", est.Scale, period)
	}
	if est.Confidence < 0.2 {
		t.Errorf("Confidence = %v, want a reasonably strong peak", est.Confidence)
	}
}

func TestPeriodicityFitterOffsetInRange(t *testing.T) {
	const n, period, phase = 96, 12, 5
	signal := combSignal(n, period, phase)

	est := NewPeriodicityFitter().Fit(signal, 16)

	if est.Offset < 0 || est.Offset >= est.Scale {
		t.Errorf("Offset = %v, want in [0, %v)", est.Offset, est.Scale)
	}
}

func TestPeriodicityFitterShortSignalFallsBack(t *testing.T) {
	signal := combSignal(3, 2, 0)
	est := NewPeriodicityFitter().Fit(signal, 16)

	if est.Scale <= 0 {
		t.Errorf("Scale = %v, want > 0 even for a degenerate search band", est.Scale)
	}
}

func TestSelectPeakFallsBackWithoutLocalMaximum(t *testing.T) {
	mag := []float64{1, 1, 1, 1}
	k, refine := selectPeak(mag, 2, 5, 1)

	if refine {
		t.Errorf("refine = true, want false when no bin is a strict local maximum")
	}
	if k != 2 {
		t.Errorf("k = %v, want the first (smallest) bin on a flat magnitude tie", k)
	}
}

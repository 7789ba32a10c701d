package gridfit

import (
	"log/slog"
	"math"
)

// minTotalEnergy is the flat-image threshold from §4.3/§7: below this,
// the signal carries no usable periodicity and the fitter bails out
// with a confidence of zero rather than chasing numerical noise.
const minTotalEnergy = 1e-4

// peakThresholdRatio biases peak selection toward the fundamental: a
// bin only counts as a peak if its magnitude clears 40% of the
// strongest bin in the scan band.
const peakThresholdRatio = 0.4

// PeriodicityFitter fits a single dominant fundamental frequency to a
// 1-D edge signal: a discrete Fourier bin sweep over the plausible
// scale range, parabolic sub-bin refinement of the first strong peak
// (biased toward the largest scale, i.e. the fundamental rather than a
// harmonic), and a phase-derived sub-pixel offset.
type PeriodicityFitter struct {
	probe *DFTProbe
}

// NewPeriodicityFitter creates a PeriodicityFitter backed by a DFTProbe.
func NewPeriodicityFitter() *PeriodicityFitter {
	return &PeriodicityFitter{probe: NewDFTProbe()}
}

// Fit returns the AxisEstimate for signal, searching scales in [2, maxScale].
// Never throws: degenerate and no-peak inputs return best-effort values
// with Confidence 0 or a low ratio; it is the caller's responsibility to
// keep NaN out of signal.
func (f *PeriodicityFitter) Fit(signal EdgeSignal, maxScale int) AxisEstimate {
	n := len(signal)
	totalEnergy := signal.Sum()

	if totalEnergy < minTotalEnergy {
		slog.Debug("periodicity fit: flat signal, returning degenerate estimate", "length", n)
		return AxisEstimate{Scale: 1, Offset: 0, Confidence: 0}
	}

	minK := max(1, n/maxScale)
	maxK := n / 2
	if maxK < minK {
		maxK = minK
	}

	mag := make([]float64, maxK-minK+1)
	globalMax := 0.0
	for k := minK; k <= maxK; k++ {
		m, _ := f.probe.Probe(signal, float64(k))
		mag[k-minK] = m
		if m > globalMax {
			globalMax = m
		}
	}

	kStar, refine := selectPeak(mag, minK, maxK, globalMax)

	kRefined := float64(kStar)
	if refine {
		kRefined = parabolicRefine(mag, kStar, minK)
	}

	magAtK, phase := f.probe.Probe(signal, kRefined)
	scale := float64(n) / kRefined
	offset := normalizeOffset(-phase*scale/(2*math.Pi), scale)
	confidence := 0.0
	if scale > 0 {
		confidence = magAtK * scale / totalEnergy
	}

	slog.Debug("periodicity fit complete",
		"n", n, "minK", minK, "maxK", maxK, "kRefined", kRefined,
		"scale", scale, "offset", offset, "confidence", confidence, "refined", refine,
	)

	return AxisEstimate{Scale: scale, Offset: offset, Confidence: confidence}
}

// selectPeak scans k from minK+1 upward (the guard minK+1..maxK-1
// ensures every candidate has both neighbors available, so parabolic
// refinement never reads out of range) and accepts the first local
// maximum that clears peakThresholdRatio·globalMax. If none qualifies,
// it falls back to the bin with the largest magnitude (ties: smallest
// k) and signals that no refinement should be applied.
func selectPeak(mag []float64, minK, maxK int, globalMax float64) (k int, refine bool) {
	threshold := peakThresholdRatio * globalMax

	for k := minK + 1; k <= maxK-1; k++ {
		i := k - minK
		if mag[i] > mag[i-1] && mag[i] > mag[i+1] && mag[i] > threshold {
			return k, true
		}
	}

	bestK := minK
	bestMag := mag[0]
	for k := minK + 1; k <= maxK; k++ {
		m := mag[k-minK]
		if m > bestMag {
			bestMag = m
			bestK = k
		}
	}
	return bestK, false
}

// parabolicRefine fits a quadratic through (k*-1, k*, k*+1) and returns
// the sub-bin peak location. Applied unconditionally when the
// denominator is nonzero, even if the result falls slightly outside
// [k*-1, k*+1] — bounded in practice by the magnitude envelope's shape.
func parabolicRefine(mag []float64, kStar, minK int) float64 {
	i := kStar - minK
	left, center, right := mag[i-1], mag[i], mag[i+1]

	d := left - 2*center + right
	if d == 0 {
		return float64(kStar)
	}
	return float64(kStar) + (left-right)/(2*d)
}

// normalizeOffset folds v into [0, scale).
func normalizeOffset(v, scale float64) float64 {
	if scale <= 0 {
		return 0
	}
	v = math.Mod(v, scale)
	if v < 0 {
		v += scale
	}
	if v >= scale {
		// A tiny negative v can round up to exactly scale above.
		v = 0
	}
	return v
}

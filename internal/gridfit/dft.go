package gridfit

import "math"

// DFTProbe evaluates a single complex Fourier coefficient of a 1-D
// signal at an arbitrary real frequency k. A full FFT is unnecessary
// and insufficient here: PeriodicityFitter needs O(N) bins in the
// low-frequency range plus one evaluation at a non-integer k after
// parabolic refinement, which a bare FFT cannot produce. No windowing
// is applied — the comb structure the fitter looks for is already
// periodic over the whole signal.
type DFTProbe struct{}

// NewDFTProbe creates a DFTProbe.
func NewDFTProbe() *DFTProbe {
	return &DFTProbe{}
}

// Probe returns the magnitude and phase (in (-π, π]) of
// Σ_n signal[n]·e^(-i·2π·k·n/N), evaluated in double precision.
func (d *DFTProbe) Probe(signal EdgeSignal, k float64) (magnitude, phase float64) {
	n := len(signal)
	if n == 0 {
		return 0, 0
	}

	var re, im float64
	scale := 2 * math.Pi * k / float64(n)
	for i, v := range signal {
		theta := scale * float64(i)
		s, c := math.Sincos(theta)
		re += v * c
		im -= v * s
	}

	return math.Hypot(re, im), math.Atan2(im, re)
}

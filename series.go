package routepace

import "fmt"

// validateSeries checks the shared preconditions on the route series:
// matching lengths, at least two samples, strictly increasing distances.
// Uniform spacing is an external precondition (the resampler produces it)
// and is not re-checked here.
func validateSeries(distM, slopeTan, bearingDeg []float64) error {
	if len(distM) < 2 {
		return fmt.Errorf("route needs at least 2 samples, got %d", len(distM))
	}
	if len(slopeTan) != len(distM) || len(bearingDeg) != len(distM) {
		return fmt.Errorf("series length mismatch: distance=%d slope=%d bearing=%d",
			len(distM), len(slopeTan), len(bearingDeg))
	}
	for i := 1; i < len(distM); i++ {
		if distM[i] <= distM[i-1] {
			return fmt.Errorf("distances must be strictly increasing (sample %d: %g after %g)",
				i, distM[i], distM[i-1])
		}
	}
	return nil
}

package routepace

import "fmt"

const (
	// Slope tangent beyond which the up/down multipliers apply.
	slopeThreshold = 0.02

	// Nominal speed used to estimate per-sample duration inside the W'
	// guard before the true speeds are known. A deliberate approximation,
	// not the simulator's output.
	guardSpeedMS = 8.0

	// Fraction of the below-CP power deficit credited back to the W'
	// balance per second.
	wPrimeRecoveryRate = 0.3
)

// PaceOptions configures the pacing heuristic.
type PaceOptions struct {
	FlatPowerW float64
	UpMult     float64
	DownMult   float64
	MaxDeltaW  float64
}

// DefaultPaceOptions returns the stock multipliers and smoothing step for
// a flat-terrain target power.
func DefaultPaceOptions(flatPowerW float64) PaceOptions {
	return PaceOptions{
		FlatPowerW: flatPowerW,
		UpMult:     1.10,
		DownMult:   0.75,
		MaxDeltaW:  30.0,
	}
}

// Pace converts a flat-terrain power target into one target power per
// route sample. Samples steeper than +2% are raised by UpMult, steeper
// than -2% lowered by DownMult (both applied to the flat base, never
// cumulatively), then the series is smoothed by a forward-only causal
// clamp to within MaxDeltaW of the previous smoothed sample. The clamp
// never revisits earlier samples; a single spike is limited going forward
// but its own first occurrence is not. If both CP and W' are set on rb, a
// forward guard caps power at CP once the estimated anaerobic balance is
// exhausted and lets it recover below CP.
//
// bearingDeg is accepted for signature symmetry with Simulate; the
// heuristic itself is wind-agnostic.
func Pace(distM, slopeTan, bearingDeg []float64, rb RiderBike, env Environment, opts PaceOptions) ([]float64, error) {
	if err := validateSeries(distM, slopeTan, bearingDeg); err != nil {
		return nil, err
	}
	if opts.FlatPowerW < 0 {
		return nil, fmt.Errorf("flat power must be non-negative, got %g W", opts.FlatPowerW)
	}

	power := make([]float64, len(slopeTan))
	for i, s := range slopeTan {
		switch {
		case s > slopeThreshold:
			power[i] = opts.FlatPowerW * opts.UpMult
		case s < -slopeThreshold:
			power[i] = opts.FlatPowerW * opts.DownMult
		default:
			power[i] = opts.FlatPowerW
		}
	}

	for i := 1; i < len(power); i++ {
		lo := power[i-1] - opts.MaxDeltaW
		hi := power[i-1] + opts.MaxDeltaW
		if power[i] < lo {
			power[i] = lo
		}
		if power[i] > hi {
			power[i] = hi
		}
	}

	if rb.CPWatts > 0 && rb.WPrimeJ > 0 {
		dtEstimate := (distM[1] - distM[0]) / guardSpeedMS
		balance := rb.WPrimeJ
		for i, p := range power {
			if p > rb.CPWatts {
				balance -= (p - rb.CPWatts) * dtEstimate
				if balance < 0 {
					balance = 0
				}
				if balance <= 0 {
					power[i] = rb.CPWatts
				}
			} else {
				balance += (rb.CPWatts - p) * wPrimeRecoveryRate * dtEstimate
				if balance > rb.WPrimeJ {
					balance = rb.WPrimeJ
				}
			}
		}
	}

	return power, nil
}

package routepace

import "fmt"

// Minimum speed used when converting a segment length into a duration, so
// legitimate extremes (zero power on a steep climb) degrade into large but
// finite durations instead of dividing by zero.
const floorSpeedMS = 0.01

// SimResult is the output of one simulation run: per-sample kinematics and
// their scalar reductions.
type SimResult struct {
	SpeedMS    []float64
	DurationS  []float64
	TotalTimeS float64
	TotalWorkJ float64
}

// Simulate walks a per-sample power series through the inverse physics
// model, producing achieved speed and duration per segment plus total time
// and total mechanical work. The segment length is taken from the first
// two distance samples; uniform spacing is the caller's precondition. The
// simulator does no smoothing or physiological guarding, and it is a pure
// function of its arguments: the same inputs yield bit-identical output.
func Simulate(distM, slopeTan, bearingDeg, powerW []float64, rb RiderBike, env Environment) (*SimResult, error) {
	if err := validateSeries(distM, slopeTan, bearingDeg); err != nil {
		return nil, err
	}
	if len(powerW) != len(distM) {
		return nil, fmt.Errorf("power series length %d does not match route length %d", len(powerW), len(distM))
	}

	segmentM := distM[1] - distM[0]
	res := &SimResult{
		SpeedMS:   make([]float64, len(powerW)),
		DurationS: make([]float64, len(powerW)),
	}
	for i := range powerW {
		v := SpeedFromPower(powerW[i], slopeTan[i], bearingDeg[i], rb, env)
		divisor := v
		if divisor < floorSpeedMS {
			divisor = floorSpeedMS
		}
		dt := segmentM / divisor
		res.SpeedMS[i] = v
		res.DurationS[i] = dt
		res.TotalTimeS += dt
		res.TotalWorkJ += powerW[i] * dt
	}
	return res, nil
}

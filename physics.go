package routepace

import "math"

// Standard gravity, m/s^2.
const gravityMS2 = 9.80665

// Upper bound of the speed search interval for SpeedFromPower: 60 km/h,
// comfortably above anything a power input in a sane range can sustain.
const maxSearchSpeedMS = 60.0 / 3.6

// speedSearchIterations halvings of a 16.7 m/s bracket leave an interval
// far below any m/s precision need, so no convergence check is required.
const speedSearchIterations = 50

// RelativeAirSpeed is the rider's speed through the air mass: the
// magnitude of the rider's ground velocity, resolved east/north through
// bearingDeg, minus the wind vector. With zero wind it equals vMS exactly;
// air moving against the direction of travel increases it, air moving
// with it decreases it.
func RelativeAirSpeed(vMS, bearingDeg float64, env Environment) float64 {
	rad := bearingDeg * math.Pi / 180.0
	relEast := vMS*math.Sin(rad) - env.WindU
	relNorth := vMS*math.Cos(rad) - env.WindV
	return math.Hypot(relEast, relNorth)
}

// PowerRequired is the instantaneous power in watts needed to hold speed
// vMS on terrain of the given slope tangent and bearing, following the
// Martin et al. (1998) road cycling power model. The aerodynamic term uses
// the relative air speed, so drag depends on heading relative to the wind,
// not just ground speed. accMS2 adds an acceleration term; pass 0 for
// steady state. The result is never negative: descents where gravity
// exceeds all losses report zero demand, not braking power.
func PowerRequired(vMS, slopeTan, bearingDeg float64, rb RiderBike, env Environment, accMS2 float64) float64 {
	slopeRad := math.Atan(slopeTan)
	mass := rb.SystemMassKG()
	vRel := RelativeAirSpeed(vMS, bearingDeg, env)

	gravityW := mass * gravityMS2 * vMS * math.Sin(slopeRad)
	rollingW := rb.Crr * mass * gravityMS2 * vMS * math.Cos(slopeRad)
	aeroW := 0.5 * env.AirDensity * rb.CdA * vRel * vRel * vRel
	accelW := mass * accMS2 * vMS

	total := (gravityW + rollingW + aeroW + accelW) / rb.DrivetrainEff
	if total < 0 {
		return 0
	}
	return total
}

// SpeedFromPower inverts PowerRequired: the non-negative speed at which
// the given power is fully consumed on the given terrain. PowerRequired is
// monotone non-decreasing in speed over [0, maxSearchSpeedMS], so a plain
// bisection with a fixed iteration count is both sufficient and
// deterministic. Returns the midpoint of the final bracket.
func SpeedFromPower(powerW, slopeTan, bearingDeg float64, rb RiderBike, env Environment) float64 {
	lo, hi := 0.0, maxSearchSpeedMS
	for i := 0; i < speedSearchIterations; i++ {
		mid := 0.5 * (lo + hi)
		if PowerRequired(mid, slopeTan, bearingDeg, rb, env, 0) > powerW {
			hi = mid
		} else {
			lo = mid
		}
	}
	return 0.5 * (lo + hi)
}

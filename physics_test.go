package routepace

import (
	"math"
	"testing"
)

func standardRider(t *testing.T) RiderBike {
	t.Helper()
	rb, err := NewRiderBike(72.0, 8.0, 0.0035, 0.30, 0.97)
	if err != nil {
		t.Fatalf("NewRiderBike error: %v", err)
	}
	return rb
}

func standardEnvironment(t *testing.T) Environment {
	t.Helper()
	env, err := NewEnvironment(1.225, 0, 0)
	if err != nil {
		t.Fatalf("NewEnvironment error: %v", err)
	}
	return env
}

func TestRelativeAirSpeedZeroWind(t *testing.T) {
	env := standardEnvironment(t)
	for _, bearing := range []float64{0, 45, 90, 135, 180, 225, 270, 315, 359.9} {
		got := RelativeAirSpeed(10.0, bearing, env)
		if math.Abs(got-10.0) > 1e-9 {
			t.Fatalf("bearing %g: relative air speed %g, want 10.0", bearing, got)
		}
	}
}

func TestRelativeAirSpeedHeadwindTailwind(t *testing.T) {
	// Riding due north at 10 m/s. Air moving south (WindV=-5) opposes
	// travel and adds to the relative speed; air moving north (WindV=+5)
	// follows the rider and subtracts from it.
	headwind := Environment{AirDensity: 1.225, WindV: -5.0}
	tailwind := Environment{AirDensity: 1.225, WindV: 5.0}

	if got := RelativeAirSpeed(10.0, 0.0, headwind); math.Abs(got-15.0) > 1e-9 {
		t.Fatalf("headwind: got %g, want 15.0", got)
	}
	if got := RelativeAirSpeed(10.0, 0.0, tailwind); math.Abs(got-5.0) > 1e-9 {
		t.Fatalf("tailwind: got %g, want 5.0", got)
	}
}

func TestRelativeAirSpeedCrosswindEastbound(t *testing.T) {
	// Riding east at 10 m/s with air moving east at 2 m/s.
	env := Environment{AirDensity: 1.225, WindU: 2.0}
	if got := RelativeAirSpeed(10.0, 90.0, env); math.Abs(got-8.0) > 1e-9 {
		t.Fatalf("got %g, want 8.0", got)
	}
}

func TestPowerRequiredFlatScenario(t *testing.T) {
	rb := standardRider(t)
	env := standardEnvironment(t)

	power := PowerRequired(10.0, 0.0, 0.0, rb, env, 0)
	if power <= 100 || power >= 300 {
		t.Fatalf("flat 10 m/s power %g W outside sanity range (100, 300)", power)
	}
}

func TestPowerRequiredClimbingCostsMore(t *testing.T) {
	rb := standardRider(t)
	env := standardEnvironment(t)

	flat := PowerRequired(10.0, 0.0, 0.0, rb, env, 0)
	climb := PowerRequired(10.0, 0.05, 0.0, rb, env, 0)
	if climb <= flat {
		t.Fatalf("climbing power %g W not above flat power %g W", climb, flat)
	}
}

func TestPowerRequiredNeverNegative(t *testing.T) {
	rb := standardRider(t)
	env := standardEnvironment(t)

	if got := PowerRequired(15.0, -0.10, 0.0, rb, env, 0); got != 0 {
		t.Fatalf("steep descent power = %g W, want 0", got)
	}
}

func TestPowerRequiredMonotoneInSpeed(t *testing.T) {
	rb := standardRider(t)
	env := Environment{AirDensity: 1.225, WindU: 2.0, WindV: -1.5}

	prev := -1.0
	for v := 0.0; v <= maxSearchSpeedMS; v += 0.25 {
		p := PowerRequired(v, 0.03, 120.0, rb, env, 0)
		if p < prev {
			t.Fatalf("power decreased from %g to %g W at v=%g m/s", prev, p, v)
		}
		prev = p
	}
}

func TestSpeedFromPowerFlatScenario(t *testing.T) {
	rb := standardRider(t)
	env := standardEnvironment(t)

	speed := SpeedFromPower(200.0, 0.0, 0.0, rb, env)
	if speed <= 8.0 || speed >= 12.0 {
		t.Fatalf("200 W flat speed %g m/s outside sanity range (8, 12)", speed)
	}
}

func TestSpeedFromPowerMonotoneInPower(t *testing.T) {
	rb := standardRider(t)
	env := standardEnvironment(t)

	prev := -1.0
	for p := 0.0; p <= 500.0; p += 25.0 {
		v := SpeedFromPower(p, 0.01, 45.0, rb, env)
		if v < prev {
			t.Fatalf("speed decreased from %g to %g m/s at %g W", prev, v, p)
		}
		prev = v
	}
}

func TestSpeedPowerRoundTrip(t *testing.T) {
	rb := standardRider(t)
	cases := []struct {
		name       string
		vMS        float64
		slopeTan   float64
		bearingDeg float64
		env        Environment
	}{
		{"flat no wind", 10.0, 0.0, 0.0, Environment{AirDensity: 1.225}},
		{"climb no wind", 4.0, 0.06, 0.0, Environment{AirDensity: 1.225}},
		{"flat headwind", 8.0, 0.0, 0.0, Environment{AirDensity: 1.225, WindV: -4.0}},
		{"descent tailwind", 14.0, -0.03, 180.0, Environment{AirDensity: 1.10, WindV: -3.0}},
		{"crosswind diagonal", 9.0, 0.01, 45.0, Environment{AirDensity: 1.20, WindU: 3.0, WindV: 2.0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			power := PowerRequired(tc.vMS, tc.slopeTan, tc.bearingDeg, rb, tc.env, 0)
			if power <= 0 {
				t.Skipf("case yields zero power demand, inverse not unique")
			}
			back := SpeedFromPower(power, tc.slopeTan, tc.bearingDeg, rb, tc.env)
			if math.Abs(back-tc.vMS) > 0.01 {
				t.Fatalf("round trip: %g m/s -> %g W -> %g m/s", tc.vMS, power, back)
			}
		})
	}
}

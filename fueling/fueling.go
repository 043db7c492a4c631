// Package fueling turns a simulated ride (durations, powers, distances)
// into nutrition guidance: ride-level intake totals, Coggan power zones,
// a Skiba W'-balance trace and interval fueling points with a fatigue
// estimate.
package fueling

import "math"

// Plan summarizes the nutrition and hydration requirements of a ride.
type Plan struct {
	Kcal          float64 `json:"kcal"`
	CarbsTotalG   float64 `json:"carbs_total_g"`
	CarbsPerHourG float64 `json:"carbs_g_per_h"`
	LitersPerHour float64 `json:"liters_per_h"`
	SodiumMGPerH  float64 `json:"sodium_mg_per_h"`
	DurationH     float64 `json:"duration_h"`
}

// DefaultGrossEfficiency is the stock mechanical-to-metabolic conversion.
const DefaultGrossEfficiency = 0.22

// NewPlan derives intake totals from ride duration and mechanical work.
// Rides under 2.5 hours target 45 g/h of carbohydrate, longer rides 75.
func NewPlan(totalSeconds, workJ, grossEff float64) Plan {
	if grossEff <= 0 {
		grossEff = DefaultGrossEfficiency
	}
	hours := totalSeconds / 3600.0

	carbsPerHour := 45.0
	if hours >= 2.5 {
		carbsPerHour = 75.0
	}

	return Plan{
		Kcal:          workJ / grossEff / 4184.0,
		CarbsTotalG:   carbsPerHour * hours,
		CarbsPerHourG: carbsPerHour,
		LitersPerHour: 0.6,
		SodiumMGPerH:  500.0,
		DurationH:     hours,
	}
}

// Zone is one FTP-anchored power band. Max is +Inf for the top band.
type Zone struct {
	Name string
	MinW float64
	MaxW float64
}

// PowerZones returns the Coggan zones for the given FTP, ordered
// low to high.
func PowerZones(ftp float64) []Zone {
	return []Zone{
		{"recovery", 0, ftp * 0.55},
		{"endurance", ftp * 0.55, ftp * 0.75},
		{"tempo", ftp * 0.75, ftp * 0.90},
		{"threshold", ftp * 0.90, ftp * 1.05},
		{"vo2max", ftp * 1.05, ftp * 1.20},
		{"anaerobic", ftp * 1.20, math.Inf(1)},
	}
}

// ZoneName returns the zone a power value falls in.
func ZoneName(power, ftp float64) string {
	for _, z := range PowerZones(ftp) {
		if power >= z.MinW && power < z.MaxW {
			return z.Name
		}
	}
	return "anaerobic"
}

// DefaultTauS is the stock W' recovery time constant (Skiba et al. 2012).
const DefaultTauS = 546.0

// WPrimeBalance computes the anaerobic balance fraction over the ride
// using the differential Skiba model: linear depletion above CP,
// exponential-style recovery below it, clamped to [0, W']. Returns one
// fraction of full W' per sample; all ones when CP or W' is unknown.
func WPrimeBalance(powersW, timesS []float64, cp, wPrime, tauS float64) []float64 {
	out := make([]float64, len(powersW))
	if cp <= 0 || wPrime <= 0 {
		for i := range out {
			out[i] = 1.0
		}
		return out
	}
	if tauS <= 0 {
		tauS = DefaultTauS
	}

	balance := wPrime
	out[0] = 1.0
	for i := 1; i < len(powersW); i++ {
		dt := timesS[i] - timesS[i-1]
		above := powersW[i-1] - cp
		if above > 0 {
			balance -= above * dt
		} else {
			below := cp - powersW[i-1]
			balance += below * (wPrime - balance) * dt / tauS / wPrime
		}
		if balance < 0 {
			balance = 0
		}
		if balance > wPrime {
			balance = wPrime
		}
		out[i] = balance / wPrime
	}
	return out
}

// FatigueIndex combines W' depletion, ride duration and intensity into a
// 0-100 score (0 fresh, 100 exhausted).
func FatigueIndex(wBalFrac, timeH, intensityFactor float64) float64 {
	wFatigue := (1.0 - wBalFrac) * 40
	durationFatigue := math.Min(40, math.Pow(timeH, 1.5)*8)
	intensityFatigue := math.Max(0, (intensityFactor-0.6)*40)

	total := wFatigue + durationFatigue + intensityFatigue
	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

// Point is one scheduled refuel during the ride.
type Point struct {
	DistanceKM    float64 `json:"distance_km"`
	TimeH         float64 `json:"time_h"`
	CarbsG        float64 `json:"carbs_g"`
	FluidsML      float64 `json:"fluids_ml"`
	SodiumMG      float64 `json:"sodium_mg"`
	DeficitKcal   float64 `json:"energy_deficit_kcal"`
	WPrimeBalFrac float64 `json:"w_prime_balance_frac"`
	FatigueIndex  float64 `json:"fatigue_index"`
	RefuelType    string  `json:"refuel_type"`
	Notes         string  `json:"notes"`
}

// PointsOptions configures the refuel schedule.
type PointsOptions struct {
	FTPWatts      float64
	CPWatts       float64 // 0 = unknown
	WPrimeJ       float64 // 0 = unknown
	IntervalMin   float64 // minimum spacing between refuels, minutes
	CarbsPerHourG float64
	GrossEff      float64
}

// Points schedules refuels along the ride. Rides shorter than 30 minutes
// get none. Refuel type and quantities adapt to elapsed time, intensity
// and the estimated fatigue at each point.
func Points(distKM, timesH, powersW []float64, opts PointsOptions) []Point {
	if len(distKM) == 0 || len(timesH) != len(distKM) || len(powersW) != len(distKM) {
		return nil
	}
	totalH := timesH[len(timesH)-1]
	if totalH < 0.5 {
		return nil
	}
	if opts.IntervalMin <= 0 {
		opts.IntervalMin = 20.0
	}
	if opts.CarbsPerHourG <= 0 {
		opts.CarbsPerHourG = 60.0
	}
	if opts.GrossEff <= 0 {
		opts.GrossEff = DefaultGrossEfficiency
	}

	timesS := make([]float64, len(timesH))
	for i, h := range timesH {
		timesS[i] = h * 3600
	}
	wBal := WPrimeBalance(powersW, timesS, opts.CPWatts, opts.WPrimeJ, DefaultTauS)

	// Cumulative metabolic expenditure per sample.
	deficitKcal := make([]float64, len(powersW))
	cum := 0.0
	for i := range powersW {
		dtH := 0.0
		if i+1 < len(timesH) {
			dtH = timesH[i+1] - timesH[i]
		} else if i > 0 {
			dtH = timesH[i] - timesH[i-1]
		}
		cum += powersW[i] * dtH * 3600 / 4184.0 / opts.GrossEff
		deficitKcal[i] = cum
	}

	intensity := 0.75
	if opts.FTPWatts > 0 {
		sum, count := 0.0, 0
		for _, p := range powersW {
			if p > 0 {
				sum += p
				count++
			}
		}
		if count > 0 {
			intensity = sum / float64(count) / opts.FTPWatts
		}
	}

	intervalH := opts.IntervalMin / 60.0
	n := int(totalH / intervalH)
	points := make([]Point, 0, n)
	for i := 1; i <= n; i++ {
		targetH := float64(i) * intervalH
		idx := nearestIndex(timesH, targetH)

		fatigue := FatigueIndex(wBal[idx], timesH[idx], intensity)
		carbs := opts.CarbsPerHourG * intervalH

		var refuelType, notes string
		switch {
		case fatigue > 70:
			refuelType = "gel"
			carbs *= 1.2
			notes = "high fatigue: favor fast carbs"
		case timesH[idx] < 1.0:
			refuelType = "bar"
			notes = "early in the ride: solids are fine"
		case intensity > 0.85:
			refuelType = "drink"
			notes = "high intensity: favor liquid carbs"
		default:
			if i%2 == 0 {
				refuelType = "bar"
			} else {
				refuelType = "gel"
			}
			notes = "moderate pace: alternate solids and gels"
		}
		if wBal[idx] < 0.3 {
			notes += "; anaerobic reserve low, back off the effort"
		} else if distKM[idx] > distKM[len(distKM)-1]*0.8 {
			notes += "; final stretch"
		}

		points = append(points, Point{
			DistanceKM:    distKM[idx],
			TimeH:         timesH[idx],
			CarbsG:        carbs,
			FluidsML:      600 * intervalH,
			SodiumMG:      500 * intervalH,
			DeficitKcal:   deficitKcal[idx],
			WPrimeBalFrac: wBal[idx],
			FatigueIndex:  fatigue,
			RefuelType:    refuelType,
			Notes:         notes,
		})
	}
	return points
}

func nearestIndex(xs []float64, target float64) int {
	best := 0
	bestDiff := math.Abs(xs[0] - target)
	for i := 1; i < len(xs); i++ {
		if d := math.Abs(xs[i] - target); d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best
}

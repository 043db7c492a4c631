package pipeline

import (
	"fmt"
	"math"
	"strings"
)

// BuildPlanNotes turns the run outcome into a readable ride briefing.
func BuildPlanNotes(s Summary, fuel FuelingFile) string {
	var b strings.Builder

	fmt.Fprintf(
		&b,
		"Route: %.1f km | +%.0f m | est. %s at %.0f W avg (%.1f km/h)\n",
		s.DistanceKM,
		s.ElevationGainM,
		formatDuration(s.TotalTimeS),
		s.AvgPowerW,
		s.AvgSpeedKMH,
	)
	fmt.Fprintf(
		&b,
		"Pacing: %.0f W flat, x%.2f up / x%.2f down, max step %.0f W\n",
		s.Params.FlatPowerW,
		s.Params.UpMult,
		s.Params.DownMult,
		s.Params.MaxDeltaW,
	)
	fmt.Fprintf(
		&b,
		"Conditions: %.1f C, %.0f Pa, wind (%.1f, %.1f) m/s, rho %.3f kg/m3\n",
		s.Params.TemperatureC,
		s.Params.PressurePa,
		s.Params.WindU,
		s.Params.WindV,
		s.AirDensity,
	)
	if s.Params.CPWatts > 0 && s.Params.WPrimeJ > 0 {
		fmt.Fprintf(
			&b,
			"Anaerobic guard: CP %.0f W, W' %.0f kJ\n",
			s.Params.CPWatts,
			s.Params.WPrimeJ/1000.0,
		)
	}

	b.WriteString("\nFueling\n")
	fmt.Fprintf(
		&b,
		"- Energy: %.0f kcal | Carbs %.0f g total (%.0f g/h) | %.1f L/h | %.0f mg/h sodium\n",
		fuel.Plan.Kcal,
		fuel.Plan.CarbsTotalG,
		fuel.Plan.CarbsPerHourG,
		fuel.Plan.LitersPerHour,
		fuel.Plan.SodiumMGPerH,
	)
	if len(fuel.Points) > 0 {
		fmt.Fprintf(&b, "- %d scheduled refuels:\n", len(fuel.Points))
		for i, p := range fuel.Points {
			fmt.Fprintf(
				&b,
				"  %d. km %.1f (%s): %s, %.0f g carbs, %.0f ml. %s\n",
				i+1,
				p.DistanceKM,
				formatDuration(p.TimeH*3600),
				p.RefuelType,
				p.CarbsG,
				p.FluidsML,
				p.Notes,
			)
		}
	} else {
		b.WriteString("- Ride is short enough to fuel before and after.\n")
	}

	b.WriteString("\nNotes\n- ")
	b.WriteString(pacingAssessment(s))
	b.WriteByte('\n')

	return strings.TrimSpace(b.String())
}

func pacingAssessment(s Summary) string {
	climbPerKM := 0.0
	if s.DistanceKM > 0 {
		climbPerKM = s.ElevationGainM / s.DistanceKM
	}
	switch {
	case climbPerKM > 15:
		return "Mountainous profile; hold the climbing targets and resist surging on the lower slopes."
	case climbPerKM > 7:
		return "Rolling course; the plan pushes slightly above base on the climbs, recover on the descents."
	default:
		return "Mostly flat; ride steady at the base target and stay aero in any headwind sections."
	}
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

package fueling

import (
	"math"
	"strings"
	"testing"
)

func TestNewPlanShortRide(t *testing.T) {
	// 2 hours, 1.44 MJ of work at default efficiency.
	p := NewPlan(7200, 1_440_000, 0)

	wantKcal := 1_440_000 / DefaultGrossEfficiency / 4184.0
	if math.Abs(p.Kcal-wantKcal) > 0.1 {
		t.Fatalf("Kcal = %.1f, want %.1f", p.Kcal, wantKcal)
	}
	if p.CarbsPerHourG != 45 {
		t.Fatalf("CarbsPerHourG = %.0f, want 45 for a 2 h ride", p.CarbsPerHourG)
	}
	if math.Abs(p.CarbsTotalG-90) > 1e-9 {
		t.Fatalf("CarbsTotalG = %.1f, want 90", p.CarbsTotalG)
	}
	if p.LitersPerHour != 0.6 || p.SodiumMGPerH != 500 {
		t.Fatalf("hydration defaults wrong: %.2f L/h, %.0f mg/h", p.LitersPerHour, p.SodiumMGPerH)
	}
}

func TestNewPlanLongRideCarbRate(t *testing.T) {
	p := NewPlan(3*3600, 2_000_000, 0.22)
	if p.CarbsPerHourG != 75 {
		t.Fatalf("CarbsPerHourG = %.0f, want 75 for a 3 h ride", p.CarbsPerHourG)
	}
}

func TestPowerZonesOrderedAndContiguous(t *testing.T) {
	zones := PowerZones(250)
	if len(zones) != 6 {
		t.Fatalf("got %d zones, want 6", len(zones))
	}
	for i := 1; i < len(zones); i++ {
		if zones[i].MinW != zones[i-1].MaxW {
			t.Fatalf("zone %q starts at %.1f, previous ends at %.1f",
				zones[i].Name, zones[i].MinW, zones[i-1].MaxW)
		}
	}
	if !math.IsInf(zones[5].MaxW, 1) {
		t.Fatalf("top zone should be unbounded, got max %.1f", zones[5].MaxW)
	}
}

func TestZoneName(t *testing.T) {
	tests := []struct {
		power float64
		want  string
	}{
		{100, "recovery"},
		{120, "endurance"},
		{150, "tempo"}, // boundary is inclusive on the lower side
		{185, "threshold"},
		{220, "vo2max"},
		{300, "anaerobic"},
	}
	for _, tt := range tests {
		if got := ZoneName(tt.power, 200); got != tt.want {
			t.Errorf("ZoneName(%.0f, 200) = %q, want %q", tt.power, got, tt.want)
		}
	}
}

func TestWPrimeBalanceDepletion(t *testing.T) {
	// 50 W above CP at 1 s spacing burns exactly 50 J per step.
	n := 30
	powers := make([]float64, n)
	times := make([]float64, n)
	for i := range powers {
		powers[i] = 300
		times[i] = float64(i)
	}
	bal := WPrimeBalance(powers, times, 250, 10000, 0)

	if bal[0] != 1.0 {
		t.Fatalf("bal[0] = %.3f, want 1.0", bal[0])
	}
	if got, want := bal[20], 0.9; math.Abs(got-want) > 1e-9 {
		t.Fatalf("bal[20] = %.4f, want %.4f", got, want)
	}
}

func TestWPrimeBalanceClampsAtZero(t *testing.T) {
	n := 60
	powers := make([]float64, n)
	times := make([]float64, n)
	for i := range powers {
		powers[i] = 350
		times[i] = float64(i)
	}
	bal := WPrimeBalance(powers, times, 250, 1000, 0)
	for i := 15; i < n; i++ {
		if bal[i] != 0 {
			t.Fatalf("bal[%d] = %.4f, want 0 after full depletion", i, bal[i])
		}
	}
}

func TestWPrimeBalanceRecovers(t *testing.T) {
	// Deplete for 60 s, then ride well below CP.
	n := 300
	powers := make([]float64, n)
	times := make([]float64, n)
	for i := range powers {
		times[i] = float64(i)
		if i < 60 {
			powers[i] = 350
		} else {
			powers[i] = 150
		}
	}
	bal := WPrimeBalance(powers, times, 250, 12000, 0)

	low := bal[61]
	if low >= 1.0 {
		t.Fatalf("expected depletion before recovery, bal[61] = %.3f", low)
	}
	for i := 62; i < n; i++ {
		if bal[i] < bal[i-1] {
			t.Fatalf("balance dropped during recovery at sample %d: %.5f -> %.5f",
				i, bal[i-1], bal[i])
		}
		if bal[i] > 1.0 {
			t.Fatalf("balance exceeded full W' at sample %d: %.5f", i, bal[i])
		}
	}
	if bal[n-1] <= low {
		t.Fatalf("no recovery: bal[%d] = %.4f, still at %.4f", n-1, bal[n-1], low)
	}
}

func TestWPrimeBalanceUnknownProfile(t *testing.T) {
	bal := WPrimeBalance([]float64{400, 400, 400}, []float64{0, 1, 2}, 0, 0, 0)
	for i, b := range bal {
		if b != 1.0 {
			t.Fatalf("bal[%d] = %.3f, want 1.0 when CP/W' unknown", i, b)
		}
	}
}

func TestFatigueIndex(t *testing.T) {
	if got := FatigueIndex(1.0, 0, 0.5); got != 0 {
		t.Fatalf("fresh rider scored %.1f, want 0", got)
	}
	// Half-depleted, 4 h in, IF 1.0: 20 + 40 (capped) + 16.
	if got, want := FatigueIndex(0.5, 4, 1.0), 76.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("FatigueIndex(0.5, 4, 1.0) = %.1f, want %.1f", got, want)
	}
	if got := FatigueIndex(0, 4, 1.2); got != 100 {
		t.Fatalf("exhausted rider scored %.1f, want clamp at 100", got)
	}
}

// steadyRide builds a 2 h ride at 30 km/h and constant power, sampled
// every minute.
func steadyRide(powerW float64) (distKM, timesH, powersW []float64) {
	n := 121
	distKM = make([]float64, n)
	timesH = make([]float64, n)
	powersW = make([]float64, n)
	for i := 0; i < n; i++ {
		timesH[i] = float64(i) / 60.0
		distKM[i] = float64(i) * 0.5
		powersW[i] = powerW
	}
	return
}

func TestPointsSchedule(t *testing.T) {
	distKM, timesH, powersW := steadyRide(200)
	pts := Points(distKM, timesH, powersW, PointsOptions{
		FTPWatts:    250,
		IntervalMin: 30,
	})
	if len(pts) != 4 {
		t.Fatalf("got %d refuel points, want 4", len(pts))
	}
	for i, p := range pts {
		wantTime := float64(i+1) * 0.5
		if math.Abs(p.TimeH-wantTime) > 0.02 {
			t.Errorf("point %d at %.2f h, want %.2f", i, p.TimeH, wantTime)
		}
		if math.Abs(p.CarbsG-30) > 1e-9 {
			t.Errorf("point %d carbs = %.1f g, want 30", i, p.CarbsG)
		}
		if p.RefuelType == "" || p.Notes == "" {
			t.Errorf("point %d missing refuel type or notes", i)
		}
	}
	if pts[0].RefuelType != "bar" {
		t.Fatalf("first point type %q, want bar inside the first hour", pts[0].RefuelType)
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].DeficitKcal <= pts[i-1].DeficitKcal {
			t.Fatalf("energy deficit not increasing at point %d", i)
		}
	}
	last := pts[len(pts)-1]
	if !strings.Contains(last.Notes, "final stretch") {
		t.Fatalf("last point notes %q, want final stretch hint", last.Notes)
	}
}

func TestPointsShortRide(t *testing.T) {
	if pts := Points([]float64{0, 5}, []float64{0, 0.4}, []float64{200, 200}, PointsOptions{}); pts != nil {
		t.Fatalf("got %d points for a 24-minute ride, want none", len(pts))
	}
}

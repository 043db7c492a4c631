package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"routepace"
	"routepace/fueling"
	"routepace/weather"
)

// writeSyntheticGPX saves a northbound test track with the given
// per-point elevations, one point every ~111 m.
func writeSyntheticGPX(t *testing.T, dir string, elevations []float64) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<gpx version="1.1" creator="test" xmlns="http://www.topografix.com/GPX/1/1">` + "\n")
	b.WriteString("<trk><trkseg>\n")
	for i, ele := range elevations {
		lat := 45.0 + float64(i)*0.001
		fmt.Fprintf(&b, `<trkpt lat="%.6f" lon="6.000000"><ele>%.1f</ele></trkpt>`+"\n", lat, ele)
	}
	b.WriteString("</trkseg></trk>\n</gpx>\n")

	path := filepath.Join(dir, "route.gpx")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write gpx: %v", err)
	}
	return path
}

func testOptions(t *testing.T, dir string) Options {
	t.Helper()
	return Options{
		GPXPath:      writeSyntheticGPX(t, dir, make([]float64, 30)),
		OutDir:       filepath.Join(dir, "out"),
		RiderMassKG:  72,
		FTPWatts:     250,
		Pace:         routepace.PaceOptions{FlatPowerW: 200},
		TemperatureC: 15,
		HumidityFrac: 0.5,
		Format:       "csv",
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t, dir)
	opts.ExportGPX = true
	opts.ExportMap = true

	res, err := Run(opts)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, path := range []string{res.PlanPath, res.SummaryPath, res.FuelingPath, res.NotesPath, res.GPXPath, res.MapPath} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}

	if res.Summary.TotalTimeS <= 0 || res.Summary.TotalWorkJ <= 0 {
		t.Fatalf("summary totals not positive: %+v", res.Summary)
	}
	if res.Summary.DistanceKM <= 0 {
		t.Fatalf("distance %g km, want positive", res.Summary.DistanceKM)
	}
	if res.Summary.AirDensity < 1.2 || res.Summary.AirDensity > 1.3 {
		t.Fatalf("air density %g, want ~1.225 for standard conditions", res.Summary.AirDensity)
	}

	f, err := os.Open(res.PlanPath)
	if err != nil {
		t.Fatalf("open plan: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read plan csv: %v", err)
	}
	if len(rows) < 2 {
		t.Fatalf("plan has %d rows, want header plus samples", len(rows))
	}
	if got := strings.Join(rows[0], ","); got != strings.Join(planCSVHeader, ",") {
		t.Fatalf("plan header = %q", got)
	}

	gpxData, err := os.ReadFile(res.GPXPath)
	if err != nil {
		t.Fatalf("read exported gpx: %v", err)
	}
	if !strings.Contains(string(gpxData), "<routepace:target_watts>") {
		t.Fatal("exported gpx missing target watts extensions")
	}

	mapData, err := os.ReadFile(res.MapPath)
	if err != nil {
		t.Fatalf("read map: %v", err)
	}
	if !strings.Contains(string(mapData), "leaflet") {
		t.Fatal("map html does not load leaflet")
	}
}

func TestRunRefusesToClobber(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t, dir)

	if _, err := Run(opts); err != nil {
		t.Fatalf("first Run error: %v", err)
	}
	if _, err := Run(opts); err == nil {
		t.Fatal("expected error when plan exists and overwrite is off")
	}
	opts.Overwrite = true
	if _, err := Run(opts); err != nil {
		t.Fatalf("Run with overwrite error: %v", err)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	opts := testOptions(t, dir)
	opts.Pace.FlatPowerW = 0
	if _, err := Run(opts); err == nil {
		t.Fatal("expected error for zero flat power")
	}

	opts = testOptions(t, dir)
	opts.Format = "xlsx"
	if _, err := Run(opts); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	opts = testOptions(t, dir)
	opts.BikeType = "penny_farthing"
	if _, err := Run(opts); err == nil {
		t.Fatal("expected error for unknown bike type")
	}
}

func TestSweepPicksCalmestHour(t *testing.T) {
	dir := t.TempDir()
	opts := testOptions(t, dir)
	opts.ExportGPX = true

	// Northbound course: hour 0 has a stiff wind from due north, hour 1
	// is calm, hour 2 is in between.
	hours := []weather.Hour{
		{Index: 0, TemperatureC: 15, HumidityFrac: 0.5, PressurePa: 101325, WindSpeedMS: 8, WindDirDeg: 0},
		{Index: 1, TemperatureC: 15, HumidityFrac: 0.5, PressurePa: 101325, WindSpeedMS: 0, WindDirDeg: 0},
		{Index: 2, TemperatureC: 15, HumidityFrac: 0.5, PressurePa: 101325, WindSpeedMS: 4, WindDirDeg: 0},
	}
	res, err := Sweep(opts, hours)
	if err != nil {
		t.Fatalf("Sweep error: %v", err)
	}
	if res.BestHour != 1 {
		t.Fatalf("best hour %d, want the calm hour 1", res.BestHour)
	}
	if len(res.Results) != 3 {
		t.Fatalf("got %d hour results, want 3", len(res.Results))
	}
	if res.Results[0].TimeS <= res.Results[1].TimeS {
		t.Fatal("headwind hour should be slower than the calm hour")
	}
	if _, err := os.Stat(res.SweepPath); err != nil {
		t.Fatalf("missing sweep.json: %v", err)
	}
	if _, err := os.Stat(res.GPXPath); err != nil {
		t.Fatalf("missing best-hour gpx: %v", err)
	}

	var persisted SweepResult
	data, err := os.ReadFile(res.SweepPath)
	if err != nil {
		t.Fatalf("read sweep.json: %v", err)
	}
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("decode sweep.json: %v", err)
	}
	if persisted.BestHour != res.BestHour {
		t.Fatalf("persisted best hour %d, want %d", persisted.BestHour, res.BestHour)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := `
[rider]
mass_kg = 72.0
height_m = 1.82
ftp_w = 255.0
cp_w = 245.0
w_prime_j = 18000.0

[bike]
type = "time_trial"
wheels = "disc_rear"

[pacing]
flat_power_w = 230.0
up_mult = 1.15

[weather]
temperature_c = 22.0
wind_u_ms = -2.5

[output]
format = "csv"
export_gpx = true
`
	path := filepath.Join(dir, "profile.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	opts, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig error: %v", err)
	}
	if opts.RiderMassKG != 72 || opts.HeightM != 1.82 || opts.FTPWatts != 255 {
		t.Fatalf("rider section mismatch: %+v", opts)
	}
	if opts.BikeType != "time_trial" || opts.Wheels != "disc_rear" {
		t.Fatalf("bike section mismatch: %+v", opts)
	}
	if opts.Pace.FlatPowerW != 230 || opts.Pace.UpMult != 1.15 {
		t.Fatalf("pacing section mismatch: %+v", opts.Pace)
	}
	if opts.TemperatureC != 22 || opts.WindU != -2.5 {
		t.Fatalf("weather section mismatch: %+v", opts)
	}
	if opts.Format != "csv" || !opts.ExportGPX {
		t.Fatalf("output section mismatch: %+v", opts)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestBuildPlanNotesMentionsFueling(t *testing.T) {
	s := Summary{
		TotalTimeS:     7200,
		TotalTimeH:     2,
		DistanceKM:     60,
		ElevationGainM: 120,
		AvgPowerW:      210,
		AvgSpeedKMH:    30,
		AirDensity:     1.225,
		Params:         Params{FlatPowerW: 200, UpMult: 1.10, DownMult: 0.75, MaxDeltaW: 30, PressurePa: 101325, TemperatureC: 15},
	}
	fuel := FuelingFile{Plan: fueling.NewPlan(7200, 1_500_000, 0)}
	notes := BuildPlanNotes(s, fuel)
	if !strings.Contains(notes, "Fueling") {
		t.Fatal("notes missing fueling section")
	}
	if !strings.Contains(notes, "60.0 km") {
		t.Fatalf("notes missing route distance: %q", notes)
	}
	if !strings.Contains(notes, "Mostly flat") {
		t.Fatalf("flat course should read as flat: %q", notes)
	}
}

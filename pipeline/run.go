// Package pipeline orchestrates a full pacing run: route ingestion,
// equipment resolution, pacing, simulation, fueling, and the artifact
// writers (parquet/CSV plan table, JSON summaries, GPX and map exports).
package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"routepace"
	"routepace/bikes"
	"routepace/fueling"
	"routepace/route"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

const defaultPressurePa = 101325.0

// Run executes the full pacing pipeline and writes all requested artifacts.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.GPXPath) == "" {
		return nil, fmt.Errorf("gpx path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = "parquet"
	}
	if format != "parquet" && format != "csv" {
		return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
	}
	if opts.Pace.FlatPowerW <= 0 {
		return nil, fmt.Errorf("flat power must be positive, got %g W", opts.Pace.FlatPowerW)
	}

	stepM := opts.StepM
	if stepM <= 0 {
		stepM = route.DefaultStepM
	}
	prof, err := route.Load(opts.GPXPath, stepM)
	if err != nil {
		return nil, fmt.Errorf("load route: %w", err)
	}

	rb, err := resolveRiderBike(opts)
	if err != nil {
		return nil, err
	}

	pressurePa := opts.PressurePa
	if pressurePa <= 0 {
		pressurePa = defaultPressurePa
	}
	rho := routepace.AirDensity(opts.TemperatureC, pressurePa, opts.HumidityFrac)
	env, err := routepace.NewEnvironment(rho, opts.WindU, opts.WindV)
	if err != nil {
		return nil, fmt.Errorf("build environment: %w", err)
	}

	pace := normalizePaceOptions(opts.Pace)
	power, err := routepace.Pace(prof.DistanceM, prof.SlopeTan, prof.BearingDeg, rb, env, pace)
	if err != nil {
		return nil, fmt.Errorf("pace route: %w", err)
	}
	sim, err := routepace.Simulate(prof.DistanceM, prof.SlopeTan, prof.BearingDeg, power, rb, env)
	if err != nil {
		return nil, fmt.Errorf("simulate ride: %w", err)
	}

	samples := buildPlanSamples(prof, power, sim)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	planPath := filepath.Join(opts.OutDir, "plan."+format)
	if !opts.Overwrite {
		if _, err := os.Stat(planPath); err == nil {
			return nil, fmt.Errorf("output %s already exists (use overwrite)", planPath)
		}
	}
	switch format {
	case "csv":
		if err := writePlanCSV(planPath, samples); err != nil {
			return nil, fmt.Errorf("write plan csv: %w", err)
		}
	case "parquet":
		if err := writePlanParquet(planPath, samples); err != nil {
			return nil, fmt.Errorf("write plan parquet: %w", err)
		}
	}

	summary := buildSummary(opts, prof, samples, sim, rho, rb, pace, pressurePa)
	summaryPath := filepath.Join(opts.OutDir, "summary.json")
	if err := writeJSON(summaryPath, summary); err != nil {
		return nil, fmt.Errorf("write summary.json: %w", err)
	}

	fuel := buildFueling(opts, rb, samples, sim)
	fuelingPath := filepath.Join(opts.OutDir, "fueling.json")
	if err := writeJSON(fuelingPath, fuel); err != nil {
		return nil, fmt.Errorf("write fueling.json: %w", err)
	}

	notesPath := filepath.Join(opts.OutDir, "plan_notes.md")
	if err := os.WriteFile(notesPath, []byte(BuildPlanNotes(summary, fuel)), 0o644); err != nil {
		return nil, fmt.Errorf("write plan_notes.md: %w", err)
	}

	res := &Result{
		OutputDir:   opts.OutDir,
		PlanPath:    planPath,
		SummaryPath: summaryPath,
		FuelingPath: fuelingPath,
		NotesPath:   notesPath,
		Summary:     summary,
	}

	if opts.ExportGPX {
		gpxPath := filepath.Join(opts.OutDir, "power_targets.gpx")
		if err := writePowerGPX(gpxPath, samples, "routepace-power-targets", opts.GPXStartTime); err != nil {
			return nil, fmt.Errorf("write power gpx: %w", err)
		}
		res.GPXPath = gpxPath
	}
	if opts.ExportMap {
		mapPath := filepath.Join(opts.OutDir, "map.html")
		ftp := rb.FTPWatts
		if ftp <= 0 {
			ftp = pace.FlatPowerW
		}
		if err := writeMapHTML(mapPath, samples, summary, fuel.Points, ftp); err != nil {
			return nil, fmt.Errorf("write map.html: %w", err)
		}
		res.MapPath = mapPath
	}
	return res, nil
}

// resolveRiderBike merges the equipment library entry with any manual
// overrides and attaches the rider's performance numbers.
func resolveRiderBike(opts Options) (routepace.RiderBike, error) {
	bikeName := opts.BikeType
	if strings.TrimSpace(bikeName) == "" {
		bikeName = string(bikes.AeroRoad)
	}
	bike, err := bikes.ParseBikeType(bikeName)
	if err != nil {
		return routepace.RiderBike{}, err
	}
	var position bikes.Position
	if strings.TrimSpace(opts.Position) != "" {
		if position, err = bikes.ParsePosition(opts.Position); err != nil {
			return routepace.RiderBike{}, err
		}
	}
	var wheels bikes.WheelType
	if strings.TrimSpace(opts.Wheels) != "" {
		if wheels, err = bikes.ParseWheelType(opts.Wheels); err != nil {
			return routepace.RiderBike{}, err
		}
	}

	cfg, err := bikes.Lookup(bike, position, wheels, opts.HeightM, opts.RiderMassKG)
	if err != nil {
		return routepace.RiderBike{}, fmt.Errorf("resolve bike config: %w", err)
	}
	if opts.BikeMassKG > 0 {
		cfg.BikeMassKG = opts.BikeMassKG
	}
	if opts.CdA > 0 {
		cfg.CdA = opts.CdA
	}
	if opts.Crr > 0 {
		cfg.Crr = opts.Crr
	}
	if opts.DrivetrainEff > 0 {
		cfg.DrivetrainEff = opts.DrivetrainEff
	}

	rb, err := routepace.NewRiderBike(opts.RiderMassKG, cfg.BikeMassKG, cfg.Crr, cfg.CdA, cfg.DrivetrainEff)
	if err != nil {
		return routepace.RiderBike{}, err
	}
	rb.FTPWatts = opts.FTPWatts
	rb.CPWatts = opts.CPWatts
	rb.WPrimeJ = opts.WPrimeJ
	rb.Age = opts.Age
	return rb, nil
}

func normalizePaceOptions(p routepace.PaceOptions) routepace.PaceOptions {
	out := routepace.DefaultPaceOptions(p.FlatPowerW)
	if p.UpMult > 0 {
		out.UpMult = p.UpMult
	}
	if p.DownMult > 0 {
		out.DownMult = p.DownMult
	}
	if p.MaxDeltaW > 0 {
		out.MaxDeltaW = p.MaxDeltaW
	}
	return out
}

func buildPlanSamples(prof *route.Profile, powerW []float64, sim *routepace.SimResult) []PlanSample {
	samples := make([]PlanSample, prof.Len())
	cum := 0.0
	for i := range samples {
		cum += sim.DurationS[i]
		samples[i] = PlanSample{
			DistM:        prof.DistanceM[i],
			ElevM:        prof.ElevationM[i],
			SlopeTan:     prof.SlopeTan[i],
			BearingDeg:   prof.BearingDeg[i],
			Lat:          prof.Latitude[i],
			Lon:          prof.Longitude[i],
			TargetPowerW: powerW[i],
			SpeedMS:      sim.SpeedMS[i],
			DurationS:    sim.DurationS[i],
			CumTimeS:     cum,
		}
	}
	return samples
}

func buildSummary(opts Options, prof *route.Profile, samples []PlanSample, sim *routepace.SimResult, rho float64, rb routepace.RiderBike, pace routepace.PaceOptions, pressurePa float64) Summary {
	gain := 0.0
	powerSum := 0.0
	for i, s := range samples {
		if i > 0 {
			if d := s.ElevM - samples[i-1].ElevM; d > 0 {
				gain += d
			}
		}
		powerSum += s.TargetPowerW
	}
	distKM := prof.TotalDistanceM() / 1000.0
	avgSpeedKMH := 0.0
	if sim.TotalTimeS > 0 {
		avgSpeedKMH = distKM / (sim.TotalTimeS / 3600.0)
	}
	return Summary{
		TotalTimeS:     sim.TotalTimeS,
		TotalTimeH:     sim.TotalTimeS / 3600.0,
		TotalWorkJ:     sim.TotalWorkJ,
		DistanceKM:     distKM,
		ElevationGainM: gain,
		AvgPowerW:      powerSum / float64(len(samples)),
		AvgSpeedKMH:    avgSpeedKMH,
		AirDensity:     rho,
		Params: Params{
			GPXPath:       opts.GPXPath,
			StepM:         prof.StepM,
			RiderMassKG:   rb.RiderMassKG,
			BikeMassKG:    rb.BikeMassKG,
			CdA:           rb.CdA,
			Crr:           rb.Crr,
			DrivetrainEff: rb.DrivetrainEff,
			FTPWatts:      rb.FTPWatts,
			CPWatts:       rb.CPWatts,
			WPrimeJ:       rb.WPrimeJ,
			FlatPowerW:    pace.FlatPowerW,
			UpMult:        pace.UpMult,
			DownMult:      pace.DownMult,
			MaxDeltaW:     pace.MaxDeltaW,
			TemperatureC:  opts.TemperatureC,
			PressurePa:    pressurePa,
			HumidityFrac:  opts.HumidityFrac,
			WindU:         opts.WindU,
			WindV:         opts.WindV,
		},
	}
}

// FuelingFile is the fueling.json payload: ride totals plus the refuel
// schedule.
type FuelingFile struct {
	Plan   fueling.Plan    `json:"plan"`
	Points []fueling.Point `json:"points,omitempty"`
}

func buildFueling(opts Options, rb routepace.RiderBike, samples []PlanSample, sim *routepace.SimResult) FuelingFile {
	plan := fueling.NewPlan(sim.TotalTimeS, sim.TotalWorkJ, opts.GrossEff)

	distKM := make([]float64, len(samples))
	timesH := make([]float64, len(samples))
	powers := make([]float64, len(samples))
	for i, s := range samples {
		distKM[i] = s.DistM / 1000.0
		timesH[i] = s.CumTimeS / 3600.0
		powers[i] = s.TargetPowerW
	}
	points := fueling.Points(distKM, timesH, powers, fueling.PointsOptions{
		FTPWatts: rb.FTPWatts,
		CPWatts:  rb.CPWatts,
		WPrimeJ:  rb.WPrimeJ,
		GrossEff: opts.GrossEff,
	})
	return FuelingFile{Plan: plan, Points: points}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var planCSVHeader = []string{
	"dist_m", "elev_m", "slope", "bearing_deg", "lat", "lon",
	"target_power_w", "speed_ms", "dt_s", "t_cum_s",
}

func writePlanCSV(path string, samples []PlanSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(planCSVHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := []string{
			formatFloat(s.DistM),
			formatFloat(s.ElevM),
			formatFloat(s.SlopeTan),
			formatFloat(s.BearingDeg),
			formatFloat(s.Lat),
			formatFloat(s.Lon),
			formatFloat(s.TargetPowerW),
			formatFloat(s.SpeedMS),
			formatFloat(s.DurationS),
			formatFloat(s.CumTimeS),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

type planParquetRow struct {
	DistM        float64 `parquet:"name=dist_m, type=DOUBLE"`
	ElevM        float64 `parquet:"name=elev_m, type=DOUBLE"`
	SlopeTan     float64 `parquet:"name=slope, type=DOUBLE"`
	BearingDeg   float64 `parquet:"name=bearing_deg, type=DOUBLE"`
	Lat          float64 `parquet:"name=lat, type=DOUBLE"`
	Lon          float64 `parquet:"name=lon, type=DOUBLE"`
	TargetPowerW float64 `parquet:"name=target_power_w, type=DOUBLE"`
	SpeedMS      float64 `parquet:"name=speed_ms, type=DOUBLE"`
	DurationS    float64 `parquet:"name=dt_s, type=DOUBLE"`
	CumTimeS     float64 `parquet:"name=t_cum_s, type=DOUBLE"`
}

func writePlanParquet(path string, samples []PlanSample) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(planParquetRow), 4)
	if err != nil {
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, s := range samples {
		row := planParquetRow{
			DistM:        s.DistM,
			ElevM:        s.ElevM,
			SlopeTan:     s.SlopeTan,
			BearingDeg:   s.BearingDeg,
			Lat:          s.Lat,
			Lon:          s.Lon,
			TargetPowerW: s.TargetPowerW,
			SpeedMS:      s.SpeedMS,
			DurationS:    s.DurationS,
			CumTimeS:     s.CumTimeS,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

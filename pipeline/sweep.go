package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"routepace"
	"routepace/route"
	"routepace/weather"
)

// HourResult is one candidate start hour's outcome.
type HourResult struct {
	Hour         int     `json:"hour"`
	TimeS        float64 `json:"time_s"`
	TimeH        float64 `json:"time_h"`
	AirDensity   float64 `json:"air_density_kg_m3"`
	TemperatureC float64 `json:"temperature_c"`
	WindSpeedMS  float64 `json:"wind_speed_ms"`
	WindDirDeg   float64 `json:"wind_dir_deg"`
}

// SweepResult ranks candidate start hours by predicted total time.
type SweepResult struct {
	Results   []HourResult `json:"results"`
	BestHour  int          `json:"best_hour"`
	BestTimeS float64      `json:"best_time_s"`
	BestTimeH float64      `json:"best_time_h"`
	SweepPath string       `json:"-"`
	GPXPath   string       `json:"-"`
}

// Sweep paces and simulates the route once per forecast hour and picks
// the fastest start. Each run is independent; only the environment
// changes between hours. The hour's Index field selects its slot in a
// day-long forecast.
func Sweep(opts Options, hours []weather.Hour) (*SweepResult, error) {
	if strings.TrimSpace(opts.GPXPath) == "" {
		return nil, fmt.Errorf("gpx path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if len(hours) == 0 {
		return nil, fmt.Errorf("no forecast hours to sweep")
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
	pace := normalizePaceOptions(opts.Pace)

	out := &SweepResult{Results: make([]HourResult, 0, len(hours))}
	var bestPower []float64
	for _, h := range hours {
		rho := routepace.AirDensity(h.TemperatureC, h.PressurePa, h.HumidityFrac)
		windU, windV := weather.WindComponents(h.WindSpeedMS, h.WindDirDeg)
		env, err := routepace.NewEnvironment(rho, windU, windV)
		if err != nil {
			return nil, fmt.Errorf("hour %d: build environment: %w", h.Index, err)
		}

		power, err := routepace.Pace(prof.DistanceM, prof.SlopeTan, prof.BearingDeg, rb, env, pace)
		if err != nil {
			return nil, fmt.Errorf("hour %d: pace route: %w", h.Index, err)
		}
		sim, err := routepace.Simulate(prof.DistanceM, prof.SlopeTan, prof.BearingDeg, power, rb, env)
		if err != nil {
			return nil, fmt.Errorf("hour %d: simulate ride: %w", h.Index, err)
		}

		out.Results = append(out.Results, HourResult{
			Hour:         h.Index,
			TimeS:        sim.TotalTimeS,
			TimeH:        sim.TotalTimeS / 3600.0,
			AirDensity:   rho,
			TemperatureC: h.TemperatureC,
			WindSpeedMS:  h.WindSpeedMS,
			WindDirDeg:   h.WindDirDeg,
		})
		if bestPower == nil || sim.TotalTimeS < out.BestTimeS {
			out.BestHour = h.Index
			out.BestTimeS = sim.TotalTimeS
			out.BestTimeH = sim.TotalTimeS / 3600.0
			bestPower = power
		}
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	out.SweepPath = filepath.Join(opts.OutDir, "sweep.json")
	if err := writeJSON(out.SweepPath, out); err != nil {
		return nil, fmt.Errorf("write sweep.json: %w", err)
	}

	if opts.ExportGPX {
		samples := make([]PlanSample, prof.Len())
		for i := range samples {
			samples[i] = PlanSample{
				Lat:          prof.Latitude[i],
				Lon:          prof.Longitude[i],
				ElevM:        prof.ElevationM[i],
				TargetPowerW: bestPower[i],
			}
		}
		name := fmt.Sprintf("routepace-best-hour-%d", out.BestHour)
		out.GPXPath = filepath.Join(opts.OutDir, fmt.Sprintf("power_targets_best_hour_%d.gpx", out.BestHour))
		if err := writePowerGPX(out.GPXPath, samples, name, opts.GPXStartTime); err != nil {
			return nil, fmt.Errorf("write best-hour gpx: %w", err)
		}
	}
	return out, nil
}

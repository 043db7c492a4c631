package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"routepace/bikes"
	"routepace/fitprofile"
	"routepace/pipeline"
	"routepace/route"
	"routepace/weather"
)

func main() {
	var (
		gpxPath    = flag.String("gpx", "", "Path to input GPX route")
		outDir     = flag.String("out", "outputs", "Output directory")
		configPath = flag.String("config", "", "TOML profile (flags override file values)")

		mass    = flag.Float64("mass", 0, "Rider mass in kg (required unless set in config)")
		height  = flag.Float64("height", 0, "Rider height in m, rescales CdA")
		ftp     = flag.Float64("ftp", 0, "FTP in watts")
		cp      = flag.Float64("cp", 0, "Critical power in watts")
		wprime  = flag.Float64("wprime", 0, "W' in joules")
		age     = flag.Int("age", 0, "Rider age in years")
		fitPath = flag.String("fit", "", "FIT activity to estimate FTP/CP/W' from when not given")

		bikeType = flag.String("bike-type", "", "Bike type: "+strings.Join(bikes.BikeTypes(), "|"))
		position = flag.String("position", "", "Riding position: "+strings.Join(bikes.Positions(), "|"))
		wheels   = flag.String("wheels", "", "Wheel type: "+strings.Join(bikes.WheelTypes(), "|"))
		bikeMass = flag.Float64("bike-mass", 0, "Manual bike mass in kg, overrides library")
		cda      = flag.Float64("cda", 0, "Manual CdA in m^2, overrides library")
		crr      = flag.Float64("crr", 0, "Manual Crr, overrides library")
		eff      = flag.Float64("eff", 0, "Manual drivetrain efficiency, overrides library")

		powerFlat = flag.Float64("power-flat", 0, "Base target power on flat ground in watts (required)")
		upMult    = flag.Float64("up-mult", 0, "Climb power multiplier (default 1.10)")
		downMult  = flag.Float64("down-mult", 0, "Descent power multiplier (default 0.75)")
		maxDelta  = flag.Float64("max-delta", 0, "Max power step between samples in watts (default 30)")
		stepM     = flag.Float64("step", 0, "Resample step in m (default 20)")
		grossEff  = flag.Float64("gross-eff", 0, "Mechanical-to-metabolic efficiency (default 0.22)")

		autoWeather = flag.Bool("auto-weather", false, "Fetch conditions from Open-Meteo")
		hour        = flag.Int("hour", 0, "Forecast hour index with -auto-weather")
		airTemp     = flag.Float64("airtemp", 15.0, "Air temperature in C")
		pressure    = flag.Float64("pressure", 101325.0, "Air pressure in Pa")
		humidity    = flag.Float64("humidity", 0.5, "Relative humidity 0..1")
		windU       = flag.Float64("wind-u", 0, "East wind component in m/s")
		windV       = flag.Float64("wind-v", 0, "North wind component in m/s")

		format       = flag.String("format", "", "Plan table format: parquet|csv (default parquet)")
		overwrite    = flag.Bool("overwrite", false, "Allow overwriting existing plan files")
		exportGPX    = flag.Bool("export-gpx", false, "Export a GPX track with target watts")
		startTimeNow = flag.Bool("start-time-now", false, "Timestamp the exported GPX from now")
		exportMap    = flag.Bool("export-map", false, "Export an interactive HTML map")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --gpx route.gpx --mass 72 --power-flat 210 [--ftp 250] [--bike-type aero_road] [--auto-weather]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts := pipeline.Options{}
	if strings.TrimSpace(*configPath) != "" {
		loaded, err := pipeline.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "routepace failed: %v\n", err)
			os.Exit(1)
		}
		opts = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	setF := func(name string, dst *float64, v float64) {
		if set[name] || *dst == 0 {
			*dst = v
		}
	}
	setS := func(name string, dst *string, v string) {
		if set[name] || *dst == "" {
			*dst = v
		}
	}

	setS("gpx", &opts.GPXPath, *gpxPath)
	setS("out", &opts.OutDir, *outDir)
	setF("mass", &opts.RiderMassKG, *mass)
	setF("height", &opts.HeightM, *height)
	setF("ftp", &opts.FTPWatts, *ftp)
	setF("cp", &opts.CPWatts, *cp)
	setF("wprime", &opts.WPrimeJ, *wprime)
	if set["age"] || opts.Age == 0 {
		opts.Age = *age
	}
	setS("bike-type", &opts.BikeType, *bikeType)
	setS("position", &opts.Position, *position)
	setS("wheels", &opts.Wheels, *wheels)
	setF("bike-mass", &opts.BikeMassKG, *bikeMass)
	setF("cda", &opts.CdA, *cda)
	setF("crr", &opts.Crr, *crr)
	setF("eff", &opts.DrivetrainEff, *eff)
	setF("power-flat", &opts.Pace.FlatPowerW, *powerFlat)
	setF("up-mult", &opts.Pace.UpMult, *upMult)
	setF("down-mult", &opts.Pace.DownMult, *downMult)
	setF("max-delta", &opts.Pace.MaxDeltaW, *maxDelta)
	setF("step", &opts.StepM, *stepM)
	setF("gross-eff", &opts.GrossEff, *grossEff)
	setF("airtemp", &opts.TemperatureC, *airTemp)
	setF("pressure", &opts.PressurePa, *pressure)
	setF("humidity", &opts.HumidityFrac, *humidity)
	setF("wind-u", &opts.WindU, *windU)
	setF("wind-v", &opts.WindV, *windV)
	setS("format", &opts.Format, *format)
	if set["overwrite"] {
		opts.Overwrite = *overwrite
	}
	if set["export-gpx"] {
		opts.ExportGPX = *exportGPX
	}
	if set["export-map"] {
		opts.ExportMap = *exportMap
	}
	if *startTimeNow {
		opts.GPXStartTime = time.Now().UTC()
	}

	if strings.TrimSpace(opts.GPXPath) == "" || opts.RiderMassKG <= 0 || opts.Pace.FlatPowerW <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	if strings.TrimSpace(*fitPath) != "" && (opts.FTPWatts <= 0 || opts.CPWatts <= 0) {
		prof, err := fitprofile.EstimateFile(*fitPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "routepace failed: estimate rider profile: %v\n", err)
			os.Exit(1)
		}
		if opts.FTPWatts <= 0 {
			opts.FTPWatts = prof.FTPWatts
		}
		if opts.CPWatts <= 0 {
			opts.CPWatts = prof.CPWatts
		}
		if opts.WPrimeJ <= 0 {
			opts.WPrimeJ = prof.WPrimeJ
		}
		fmt.Printf("rider profile from FIT: FTP %.0f W, CP %.0f W, W' %.0f J\n",
			prof.FTPWatts, prof.CPWatts, prof.WPrimeJ)
	}

	if *autoWeather {
		if err := fillWeather(&opts, *hour); err != nil {
			fmt.Fprintf(os.Stderr, "routepace failed: %v\n", err)
			os.Exit(1)
		}
	}

	result, err := pipeline.Run(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routepace failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("routepace complete\n")
	fmt.Printf("Output dir:       %s\n", result.OutputDir)
	fmt.Printf("plan table:       %s\n", result.PlanPath)
	fmt.Printf("summary:          %s\n", result.SummaryPath)
	fmt.Printf("fueling:          %s\n", result.FuelingPath)
	fmt.Printf("notes:            %s\n", result.NotesPath)
	if result.GPXPath != "" {
		fmt.Printf("power gpx:        %s\n", result.GPXPath)
	}
	if result.MapPath != "" {
		fmt.Printf("map:              %s\n", result.MapPath)
	}
	fmt.Printf("Distance:         %.1f km (+%.0f m)\n", result.Summary.DistanceKM, result.Summary.ElevationGainM)
	fmt.Printf("Estimated time:   %.2f h\n", result.Summary.TotalTimeH)
	fmt.Printf("Avg power/speed:  %.0f W / %.1f km/h\n", result.Summary.AvgPowerW, result.Summary.AvgSpeedKMH)
	fmt.Printf("Air density:      %.3f kg/m3\n", result.Summary.AirDensity)
}

// fillWeather fetches the Open-Meteo forecast at the route's mean
// position and copies the selected hour into the run options.
func fillWeather(opts *pipeline.Options, hour int) error {
	stepM := opts.StepM
	if stepM <= 0 {
		stepM = route.DefaultStepM
	}
	prof, err := route.Load(opts.GPXPath, stepM)
	if err != nil {
		return fmt.Errorf("load route for weather position: %w", err)
	}
	lat, lon := 0.0, 0.0
	for i := 0; i < prof.Len(); i++ {
		lat += prof.Latitude[i]
		lon += prof.Longitude[i]
	}
	lat /= float64(prof.Len())
	lon /= float64(prof.Len())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	client := &weather.Client{}
	hours, err := client.Hourly(ctx, lat, lon)
	if err != nil {
		return fmt.Errorf("fetch weather: %w", err)
	}
	if hour < 0 || hour >= len(hours) {
		return fmt.Errorf("forecast hour %d out of range (0..%d)", hour, len(hours)-1)
	}
	h := hours[hour]
	opts.TemperatureC = h.TemperatureC
	opts.PressurePa = h.PressurePa
	opts.HumidityFrac = h.HumidityFrac
	opts.WindU, opts.WindV = weather.WindComponents(h.WindSpeedMS, h.WindDirDeg)
	fmt.Printf("weather hour %d: %.1f C, %.0f Pa, wind %.1f m/s from %.0f deg\n",
		h.Index, h.TemperatureC, h.PressurePa, h.WindSpeedMS, h.WindDirDeg)
	return nil
}

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
	"routepace/pipeline"
	"routepace/route"
	"routepace/weather"
)

func main() {
	var (
		gpxPath    = flag.String("gpx", "", "Path to input GPX route")
		outDir     = flag.String("out", "outputs", "Output directory")
		configPath = flag.String("config", "", "TOML profile (flags override file values)")

		mass   = flag.Float64("mass", 0, "Rider mass in kg (required unless set in config)")
		height = flag.Float64("height", 0, "Rider height in m, rescales CdA")
		ftp    = flag.Float64("ftp", 0, "FTP in watts")
		cp     = flag.Float64("cp", 0, "Critical power in watts")
		wprime = flag.Float64("wprime", 0, "W' in joules")

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

		startHour = flag.Int("start-hour", 6, "First forecast hour index to try")
		endHour   = flag.Int("end-hour", 20, "Last forecast hour index to try")
		exportGPX = flag.Bool("export-gpx", false, "Export a GPX with target watts for the best hour")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --gpx route.gpx --mass 72 --power-flat 210 [--start-hour 6] [--end-hour 20]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts := pipeline.Options{}
	if strings.TrimSpace(*configPath) != "" {
		loaded, err := pipeline.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "routescan failed: %v\n", err)
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
	if set["export-gpx"] {
		opts.ExportGPX = *exportGPX
	}

	if strings.TrimSpace(opts.GPXPath) == "" || opts.RiderMassKG <= 0 || opts.Pace.FlatPowerW <= 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *startHour < 0 || *endHour < *startHour {
		fmt.Fprintf(os.Stderr, "routescan failed: invalid hour range %d..%d\n", *startHour, *endHour)
		os.Exit(2)
	}

	hours, err := fetchHours(opts, *startHour, *endHour)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routescan failed: %v\n", err)
		os.Exit(1)
	}

	result, err := pipeline.Sweep(opts, hours)
	if err != nil {
		fmt.Fprintf(os.Stderr, "routescan failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("routescan complete\n")
	fmt.Printf("Hours tried:      %d..%d\n", *startHour, *endHour)
	for _, r := range result.Results {
		marker := " "
		if r.Hour == result.BestHour {
			marker = "*"
		}
		fmt.Printf("%s hour %2d:        %.2f h (wind %.1f m/s from %.0f deg)\n",
			marker, r.Hour, r.TimeH, r.WindSpeedMS, r.WindDirDeg)
	}
	fmt.Printf("Best start hour:  %d (%.2f h)\n", result.BestHour, result.BestTimeH)
	fmt.Printf("sweep:            %s\n", result.SweepPath)
	if result.GPXPath != "" {
		fmt.Printf("best-hour gpx:    %s\n", result.GPXPath)
	}
}

// fetchHours loads the route to find its mean position, then pulls the
// Open-Meteo forecast and slices out the requested hour range.
func fetchHours(opts pipeline.Options, startHour, endHour int) ([]weather.Hour, error) {
	stepM := opts.StepM
	if stepM <= 0 {
		stepM = route.DefaultStepM
	}
	prof, err := route.Load(opts.GPXPath, stepM)
	if err != nil {
		return nil, fmt.Errorf("load route for weather position: %w", err)
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
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	if startHour >= len(hours) {
		return nil, fmt.Errorf("forecast has %d hours, start hour %d out of range", len(hours), startHour)
	}
	if endHour >= len(hours) {
		endHour = len(hours) - 1
	}
	return hours[startHour : endHour+1], nil
}

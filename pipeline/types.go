package pipeline

import (
	"time"

	"routepace"
)

// Options configures one pacing run.
type Options struct {
	GPXPath string
	OutDir  string
	StepM   float64 // 0 = route.DefaultStepM

	RiderMassKG float64
	HeightM     float64 // 0 = library reference height
	FTPWatts    float64
	CPWatts     float64
	WPrimeJ     float64
	Age         int

	// Equipment, resolved through the bikes library. Manual values
	// override the library entry when non-zero.
	BikeType      string
	Position      string
	Wheels        string
	BikeMassKG    float64
	CdA           float64
	Crr           float64
	DrivetrainEff float64

	Pace routepace.PaceOptions

	// Weather, either set manually or filled from a fetched hour.
	TemperatureC float64
	PressurePa   float64 // 0 = 101325
	HumidityFrac float64
	WindU        float64
	WindV        float64

	GrossEff float64 // 0 = fueling.DefaultGrossEfficiency

	Format       string // parquet|csv, default parquet
	Overwrite    bool
	ExportGPX    bool
	GPXStartTime time.Time // zero = no timestamps in the exported GPX
	ExportMap    bool
}

// Result returns generated artifact paths plus the ride summary.
type Result struct {
	OutputDir   string  `json:"output_dir"`
	PlanPath    string  `json:"plan_path"`
	SummaryPath string  `json:"summary_path"`
	FuelingPath string  `json:"fueling_path"`
	NotesPath   string  `json:"notes_path"`
	GPXPath     string  `json:"gpx_path,omitempty"`
	MapPath     string  `json:"map_path,omitempty"`
	Summary     Summary `json:"summary"`
}

// Summary is the ride-level outcome written to summary.json.
type Summary struct {
	TotalTimeS     float64 `json:"total_time_s"`
	TotalTimeH     float64 `json:"total_time_h"`
	TotalWorkJ     float64 `json:"total_work_j"`
	DistanceKM     float64 `json:"distance_km"`
	ElevationGainM float64 `json:"elevation_gain_m"`
	AvgPowerW      float64 `json:"avg_power_w"`
	AvgSpeedKMH    float64 `json:"avg_speed_kmh"`
	AirDensity     float64 `json:"air_density_kg_m3"`
	Params         Params  `json:"params"`
}

// Params records the inputs a run was computed with, so a plan can be
// reproduced later.
type Params struct {
	GPXPath       string  `json:"gpx_path"`
	StepM         float64 `json:"step_m"`
	RiderMassKG   float64 `json:"rider_mass_kg"`
	BikeMassKG    float64 `json:"bike_mass_kg"`
	CdA           float64 `json:"cda_m2"`
	Crr           float64 `json:"crr"`
	DrivetrainEff float64 `json:"drivetrain_eff"`
	FTPWatts      float64 `json:"ftp_w,omitempty"`
	CPWatts       float64 `json:"cp_w,omitempty"`
	WPrimeJ       float64 `json:"w_prime_j,omitempty"`
	FlatPowerW    float64 `json:"flat_power_w"`
	UpMult        float64 `json:"up_mult"`
	DownMult      float64 `json:"down_mult"`
	MaxDeltaW     float64 `json:"max_delta_w"`
	TemperatureC  float64 `json:"temperature_c"`
	PressurePa    float64 `json:"pressure_pa"`
	HumidityFrac  float64 `json:"humidity_frac"`
	WindU         float64 `json:"wind_u_ms"`
	WindV         float64 `json:"wind_v_ms"`
}

// PlanSample is one resampled route point with its target and predicted
// outcome. The same rows back the parquet, CSV, GPX and map artifacts.
type PlanSample struct {
	DistM        float64
	ElevM        float64
	SlopeTan     float64
	BearingDeg   float64
	Lat          float64
	Lon          float64
	TargetPowerW float64
	SpeedMS      float64
	DurationS    float64
	CumTimeS     float64
}

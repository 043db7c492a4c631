package pipeline

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileConfig mirrors the TOML profile layout.
type fileConfig struct {
	Rider struct {
		MassKG   float64 `toml:"mass_kg"`
		HeightM  float64 `toml:"height_m"`
		FTPWatts float64 `toml:"ftp_w"`
		CPWatts  float64 `toml:"cp_w"`
		WPrimeJ  float64 `toml:"w_prime_j"`
		Age      int     `toml:"age"`
	} `toml:"rider"`
	Bike struct {
		Type          string  `toml:"type"`
		Position      string  `toml:"position"`
		Wheels        string  `toml:"wheels"`
		MassKG        float64 `toml:"mass_kg"`
		CdA           float64 `toml:"cda_m2"`
		Crr           float64 `toml:"crr"`
		DrivetrainEff float64 `toml:"drivetrain_eff"`
	} `toml:"bike"`
	Pacing struct {
		FlatPowerW float64 `toml:"flat_power_w"`
		UpMult     float64 `toml:"up_mult"`
		DownMult   float64 `toml:"down_mult"`
		MaxDeltaW  float64 `toml:"max_delta_w"`
	} `toml:"pacing"`
	Weather struct {
		TemperatureC float64 `toml:"temperature_c"`
		PressurePa   float64 `toml:"pressure_pa"`
		HumidityFrac float64 `toml:"humidity_frac"`
		WindU        float64 `toml:"wind_u_ms"`
		WindV        float64 `toml:"wind_v_ms"`
	} `toml:"weather"`
	Output struct {
		Dir       string  `toml:"dir"`
		Format    string  `toml:"format"`
		StepM     float64 `toml:"step_m"`
		GrossEff  float64 `toml:"gross_eff"`
		Overwrite bool    `toml:"overwrite"`
		ExportGPX bool    `toml:"export_gpx"`
		ExportMap bool    `toml:"export_map"`
	} `toml:"output"`
}

// LoadConfig reads a TOML profile into Options. Values the file leaves
// unset stay zero and pick up the pipeline defaults; CLI flags are meant
// to be applied on top.
func LoadConfig(path string) (Options, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return Options{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	var opts Options
	opts.RiderMassKG = fc.Rider.MassKG
	opts.HeightM = fc.Rider.HeightM
	opts.FTPWatts = fc.Rider.FTPWatts
	opts.CPWatts = fc.Rider.CPWatts
	opts.WPrimeJ = fc.Rider.WPrimeJ
	opts.Age = fc.Rider.Age

	opts.BikeType = fc.Bike.Type
	opts.Position = fc.Bike.Position
	opts.Wheels = fc.Bike.Wheels
	opts.BikeMassKG = fc.Bike.MassKG
	opts.CdA = fc.Bike.CdA
	opts.Crr = fc.Bike.Crr
	opts.DrivetrainEff = fc.Bike.DrivetrainEff

	opts.Pace.FlatPowerW = fc.Pacing.FlatPowerW
	opts.Pace.UpMult = fc.Pacing.UpMult
	opts.Pace.DownMult = fc.Pacing.DownMult
	opts.Pace.MaxDeltaW = fc.Pacing.MaxDeltaW

	opts.TemperatureC = fc.Weather.TemperatureC
	opts.PressurePa = fc.Weather.PressurePa
	opts.HumidityFrac = fc.Weather.HumidityFrac
	opts.WindU = fc.Weather.WindU
	opts.WindV = fc.Weather.WindV

	opts.OutDir = fc.Output.Dir
	opts.Format = fc.Output.Format
	opts.StepM = fc.Output.StepM
	opts.GrossEff = fc.Output.GrossEff
	opts.Overwrite = fc.Output.Overwrite
	opts.ExportGPX = fc.Output.ExportGPX
	opts.ExportMap = fc.Output.ExportMap
	return opts, nil
}

// Package bikes is an immutable equipment database: bike categories,
// riding positions and wheel configurations with their mass, drag-area and
// rolling-resistance characteristics. Text is parsed into the closed enum
// types at the boundary; everything downstream works with resolved
// numbers only.
package bikes

import (
	"fmt"
	"math"
	"sort"
)

// BikeType identifies a bicycle category.
type BikeType string

const (
	RoadRace      BikeType = "road_race"
	RoadEndurance BikeType = "road_endurance"
	AeroRoad      BikeType = "aero_road"
	TimeTrial     BikeType = "time_trial"
	Gravel        BikeType = "gravel"
	Mountain      BikeType = "mountain"
)

// Position identifies a riding position.
type Position string

const (
	Upright    Position = "upright"
	Drops      Position = "drops"
	AeroHoods  Position = "aero_hoods"
	TTPosition Position = "time_trial"
	SuperTuck  Position = "super_tuck"
)

// WheelType identifies a wheel configuration.
type WheelType string

const (
	ShallowAlloy  WheelType = "shallow_alloy"
	ShallowCarbon WheelType = "shallow_carbon"
	MidDepth      WheelType = "mid_depth"
	DeepSection   WheelType = "deep_section"
	DiscRear      WheelType = "disc_rear"
)

// Spec describes one bike category.
type Spec struct {
	MassKG        float64
	BaseCdA       float64
	Crr           float64
	DrivetrainEff float64
	Description   string
}

// PositionSpec describes the rider's CdA contribution in one position,
// referenced to a 1.80 m, 75 kg rider.
type PositionSpec struct {
	RiderCdA    float64
	Description string
}

// WheelSpec describes a wheel configuration as deltas against the
// baseline shallow alloy wheels.
type WheelSpec struct {
	MassDeltaKG float64
	CdADelta    float64
	CrrDelta    float64
	Description string
}

var bikeDB = map[BikeType]Spec{
	RoadRace:      {7.5, 0.08, 0.0035, 0.977, "Lightweight racing bike"},
	RoadEndurance: {8.5, 0.09, 0.004, 0.975, "Comfort-oriented road bike"},
	AeroRoad:      {8.2, 0.07, 0.0035, 0.977, "Aerodynamic road bike"},
	TimeTrial:     {9.0, 0.06, 0.003, 0.977, "Time trial/triathlon bike with aerobars"},
	Gravel:        {9.5, 0.10, 0.006, 0.97, "Gravel/all-road bike with wider tires"},
	Mountain:      {11.0, 0.12, 0.008, 0.95, "Cross-country mountain bike"},
}

var positionDB = map[Position]PositionSpec{
	Upright:    {0.35, "Hands on hoods, relaxed upright position"},
	Drops:      {0.28, "Hands in drops, moderately aggressive"},
	AeroHoods:  {0.30, "Hands on hoods, elbows tucked"},
	TTPosition: {0.22, "On aerobars, full TT position"},
	SuperTuck:  {0.18, "Extreme aero position (descending)"},
}

var wheelDB = map[WheelType]WheelSpec{
	ShallowAlloy:  {0.0, 0.0, 0.0, "Baseline: shallow alloy clinchers (<30mm)"},
	ShallowCarbon: {-0.4, -0.002, -0.0002, "Shallow carbon wheels (<30mm)"},
	MidDepth:      {-0.2, -0.008, -0.0003, "Mid-depth carbon (40-50mm)"},
	DeepSection:   {0.1, -0.012, -0.0003, "Deep-section carbon (60-80mm)"},
	DiscRear:      {0.3, -0.015, -0.0003, "Disc wheel rear + deep front"},
}

// ParseBikeType converts boundary text into a BikeType.
func ParseBikeType(s string) (BikeType, error) {
	bt := BikeType(s)
	if _, ok := bikeDB[bt]; !ok {
		return "", fmt.Errorf("unknown bike type %q (known: %v)", s, BikeTypes())
	}
	return bt, nil
}

// ParsePosition converts boundary text into a Position.
func ParsePosition(s string) (Position, error) {
	p := Position(s)
	if _, ok := positionDB[p]; !ok {
		return "", fmt.Errorf("unknown riding position %q (known: %v)", s, Positions())
	}
	return p, nil
}

// ParseWheelType converts boundary text into a WheelType.
func ParseWheelType(s string) (WheelType, error) {
	wt := WheelType(s)
	if _, ok := wheelDB[wt]; !ok {
		return "", fmt.Errorf("unknown wheel type %q (known: %v)", s, WheelTypes())
	}
	return wt, nil
}

// BikeTypes lists the known bike type identifiers, sorted.
func BikeTypes() []string { return sortedKeys(bikeDB) }

// Positions lists the known riding position identifiers, sorted.
func Positions() []string { return sortedKeys(positionDB) }

// WheelTypes lists the known wheel type identifiers, sorted.
func WheelTypes() []string { return sortedKeys(wheelDB) }

func sortedKeys[K ~string, V any](m map[K]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// Config is a fully resolved equipment configuration.
type Config struct {
	BikeMassKG    float64
	CdA           float64
	Crr           float64
	DrivetrainEff float64
}

// Reference rider used by the position database.
const (
	referenceHeightM = 1.80
	referenceMassKG  = 75.0
)

// Lookup resolves a complete configuration. An empty position defaults to
// the TT position on a time trial bike and drops otherwise; empty wheels
// default to shallow alloy. If heightM or massKG is positive the rider's
// CdA contribution is rescaled from the reference rider (a missing one of
// the pair falls back to the reference value).
func Lookup(bike BikeType, position Position, wheels WheelType, heightM, massKG float64) (Config, error) {
	spec, ok := bikeDB[bike]
	if !ok {
		return Config{}, fmt.Errorf("unknown bike type %q", bike)
	}
	if position == "" {
		if bike == TimeTrial {
			position = TTPosition
		} else {
			position = Drops
		}
	}
	if wheels == "" {
		wheels = ShallowAlloy
	}
	posSpec, ok := positionDB[position]
	if !ok {
		return Config{}, fmt.Errorf("unknown riding position %q", position)
	}
	wheelSpec, ok := wheelDB[wheels]
	if !ok {
		return Config{}, fmt.Errorf("unknown wheel type %q", wheels)
	}

	riderCdA := posSpec.RiderCdA
	if heightM > 0 || massKG > 0 {
		h, m := heightM, massKG
		if h <= 0 {
			h = referenceHeightM
		}
		if m <= 0 {
			m = referenceMassKG
		}
		riderCdA = EstimateCdA(h, m, position)
	}

	return Config{
		BikeMassKG:    spec.MassKG + wheelSpec.MassDeltaKG,
		CdA:           spec.BaseCdA + riderCdA + wheelSpec.CdADelta,
		Crr:           spec.Crr + wheelSpec.CrrDelta,
		DrivetrainEff: spec.DrivetrainEff,
	}, nil
}

// EstimateCdA scales the position's reference rider CdA by anthropometry,
// using DuBois-style frontal-area exponents (height^0.725, mass^0.425).
func EstimateCdA(heightM, massKG float64, position Position) float64 {
	spec, ok := positionDB[position]
	if !ok {
		spec = positionDB[Drops]
	}
	heightFactor := math.Pow(heightM/referenceHeightM, 0.725)
	massFactor := math.Pow(massKG/referenceMassKG, 0.425)
	return spec.RiderCdA * heightFactor * massFactor
}

// Package routepace models steady-state road cycling: a forward power
// model with wind, its bisection inverse, a terrain-aware pacing
// heuristic bounded by anaerobic capacity, and a route simulator that
// integrates per-segment targets into time and work.
package routepace

import "fmt"

// RiderBike holds the physical parameters of the rider plus bike system.
// Performance fields (CPWatts, WPrimeJ, FTPWatts, Age) are optional; zero
// means unknown. Construct through NewRiderBike so bad parameters are
// rejected up front instead of surfacing as strange numbers later.
type RiderBike struct {
	RiderMassKG   float64
	BikeMassKG    float64
	Crr           float64
	CdA           float64
	DrivetrainEff float64

	CPWatts  float64
	WPrimeJ  float64
	FTPWatts float64
	Age      int
}

// NewRiderBike validates the required physical parameters and returns the
// assembled system. Optional performance fields can be set on the result.
func NewRiderBike(riderMassKG, bikeMassKG, crr, cda, drivetrainEff float64) (RiderBike, error) {
	if riderMassKG <= 0 {
		return RiderBike{}, fmt.Errorf("rider mass must be positive, got %g kg", riderMassKG)
	}
	if bikeMassKG <= 0 {
		return RiderBike{}, fmt.Errorf("bike mass must be positive, got %g kg", bikeMassKG)
	}
	if crr <= 0 {
		return RiderBike{}, fmt.Errorf("rolling resistance coefficient must be positive, got %g", crr)
	}
	if cda <= 0 {
		return RiderBike{}, fmt.Errorf("drag area must be positive, got %g m^2", cda)
	}
	if drivetrainEff <= 0 || drivetrainEff > 1 {
		return RiderBike{}, fmt.Errorf("drivetrain efficiency must be in (0,1], got %g", drivetrainEff)
	}
	return RiderBike{
		RiderMassKG:   riderMassKG,
		BikeMassKG:    bikeMassKG,
		Crr:           crr,
		CdA:           cda,
		DrivetrainEff: drivetrainEff,
	}, nil
}

// SystemMassKG is the total mass of rider plus bike.
func (rb RiderBike) SystemMassKG() float64 {
	return rb.RiderMassKG + rb.BikeMassKG
}

// Environment holds the atmospheric conditions for one simulated scenario.
// WindU and WindV are the east and north components of the wind velocity
// vector in m/s, i.e. the direction the air is moving toward.
type Environment struct {
	AirDensity float64
	WindU      float64
	WindV      float64
}

// NewEnvironment validates air density and returns the environment.
func NewEnvironment(airDensity, windU, windV float64) (Environment, error) {
	if airDensity <= 0 {
		return Environment{}, fmt.Errorf("air density must be positive, got %g kg/m^3", airDensity)
	}
	return Environment{AirDensity: airDensity, WindU: windU, WindV: windV}, nil
}

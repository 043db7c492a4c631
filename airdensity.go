package routepace

import "math"

// Specific gas constants, J/(kg*K).
const (
	rDryAir     = 287.058
	rWaterVapor = 461.495
)

// AirDensity computes air density in kg/m^3 from temperature, pressure and
// relative humidity. Water vapor saturation pressure comes from the Tetens
// equation; the dry-air and vapor partial pressures then go through the
// ideal gas law. Standard conditions (15 C, 101325 Pa, 50% humidity) give
// about 1.225.
func AirDensity(temperatureC, pressurePa, humidityFrac float64) float64 {
	temperatureK := temperatureC + 273.15

	// Tetens saturation vapor pressure, Pa.
	pSat := 610.94 * math.Exp((17.625*temperatureC)/(temperatureC+243.04))
	pVapor := humidityFrac * pSat
	pDry := pressurePa - pVapor

	return pDry/(rDryAir*temperatureK) + pVapor/(rWaterVapor*temperatureK)
}

// Package route loads a GPX track and resamples it onto a uniform
// distance grid, producing the parallel series (distance, elevation,
// slope, bearing, lat/lon) the pacing and simulation core consumes.
package route

import (
	"fmt"
	"math"

	"github.com/tkrajina/gpxgo/gpx"
)

const earthRadiusM = 6371000.0

// DefaultStepM is the stock resampling interval.
const DefaultStepM = 20.0

// Profile holds the uniformly resampled route series. All slices have the
// same length and share indices; DistanceM is strictly increasing with
// fixed StepM spacing.
type Profile struct {
	StepM      float64
	DistanceM  []float64
	ElevationM []float64
	SlopeTan   []float64
	BearingDeg []float64
	Latitude   []float64
	Longitude  []float64
}

// Len returns the number of samples.
func (p *Profile) Len() int { return len(p.DistanceM) }

// TotalDistanceM returns the distance covered by the last sample.
func (p *Profile) TotalDistanceM() float64 {
	if len(p.DistanceM) == 0 {
		return 0
	}
	return p.DistanceM[len(p.DistanceM)-1]
}

// Load parses a GPX file and resamples it at stepM meters.
func Load(path string, stepM float64) (*Profile, error) {
	g, err := gpx.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse GPX file: %w", err)
	}
	return fromGPX(g, stepM)
}

// Parse parses in-memory GPX data and resamples it at stepM meters.
func Parse(data []byte, stepM float64) (*Profile, error) {
	g, err := gpx.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse GPX data: %w", err)
	}
	return fromGPX(g, stepM)
}

func fromGPX(g *gpx.GPX, stepM float64) (*Profile, error) {
	if stepM <= 0 {
		return nil, fmt.Errorf("resample step must be positive, got %g m", stepM)
	}

	var lats, lons, elevs []float64
	appendPoint := func(lat, lon, ele float64) {
		lats = append(lats, lat)
		lons = append(lons, lon)
		elevs = append(elevs, ele)
	}
	for _, trk := range g.Tracks {
		for _, seg := range trk.Segments {
			for i := range seg.Points {
				p := &seg.Points[i]
				appendPoint(p.Latitude, p.Longitude, p.Elevation.Value())
			}
		}
	}
	// Some files carry only <rte> routes, no tracks.
	if len(lats) == 0 {
		for _, rte := range g.Routes {
			for i := range rte.Points {
				p := &rte.Points[i]
				appendPoint(p.Latitude, p.Longitude, p.Elevation.Value())
			}
		}
	}
	if len(lats) < 2 {
		return nil, fmt.Errorf("GPX contains %d usable points, need at least 2", len(lats))
	}

	dist := make([]float64, len(lats))
	for i := 1; i < len(lats); i++ {
		dist[i] = dist[i-1] + haversineM(lats[i-1], lons[i-1], lats[i], lons[i])
	}
	total := dist[len(dist)-1]
	if total <= stepM {
		return nil, fmt.Errorf("route length %.1f m is too short for a %.1f m resample step", total, stepM)
	}

	n := int(math.Floor(total/stepM)) + 1
	grid := make([]float64, n)
	for i := range grid {
		grid[i] = float64(i) * stepM
	}

	p := &Profile{
		StepM:      stepM,
		DistanceM:  grid,
		ElevationM: interp(grid, dist, elevs),
		Latitude:   interp(grid, dist, lats),
		Longitude:  interp(grid, dist, lons),
	}
	p.SlopeTan = gradient(p.ElevationM, stepM)
	p.BearingDeg = bearings(p.Latitude, p.Longitude)
	return p, nil
}

// interp linearly interpolates ys (defined over xs, non-decreasing) onto
// the target grid, clamping outside the data range.
func interp(grid, xs, ys []float64) []float64 {
	out := make([]float64, len(grid))
	j := 0
	for i, x := range grid {
		for j < len(xs)-2 && xs[j+1] <= x {
			j++
		}
		x0, x1 := xs[j], xs[j+1]
		if x <= x0 {
			out[i] = ys[j]
			continue
		}
		if x >= x1 {
			out[i] = ys[j+1]
			continue
		}
		t := (x - x0) / (x1 - x0)
		out[i] = ys[j] + t*(ys[j+1]-ys[j])
	}
	return out
}

// gradient returns the local slope tangent via central differences, with
// one-sided differences at the endpoints.
func gradient(elev []float64, stepM float64) []float64 {
	n := len(elev)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = (elev[1] - elev[0]) / stepM
	out[n-1] = (elev[n-1] - elev[n-2]) / stepM
	for i := 1; i < n-1; i++ {
		out[i] = (elev[i+1] - elev[i-1]) / (2 * stepM)
	}
	return out
}

// bearings computes the initial great-circle bearing into each sample from
// its predecessor; the first sample copies the second so the series stays
// aligned with the grid.
func bearings(lats, lons []float64) []float64 {
	n := len(lats)
	out := make([]float64, n)
	for i := 1; i < n; i++ {
		out[i] = bearingDeg(lats[i-1], lons[i-1], lats[i], lons[i])
	}
	if n > 1 {
		out[0] = out[1]
	}
	return out
}

func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}

func bearingDeg(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dLambda := radians(lon2 - lon1)
	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

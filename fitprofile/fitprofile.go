// Package fitprofile estimates a rider's performance parameters (FTP, CP,
// W') from a recorded FIT activity, for riders who have power data but no
// lab-tested numbers.
package fitprofile

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/tormoder/fit"
)

// Profile holds the estimated performance parameters. CP is approximated
// by the FTP estimate; W' comes from the surplus of the best 3-minute
// effort over CP sustained for those 3 minutes.
type Profile struct {
	FTPWatts   float64
	CPWatts    float64
	WPrimeJ    float64
	Best20MinW float64
	Best3MinW  float64
	Samples    int
}

// EstimateFile decodes a FIT activity file and estimates the profile from
// its power record stream.
func EstimateFile(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open FIT file: %w", err)
	}
	defer f.Close()

	decoded, err := fit.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	powers := powerSeries(activity.Records)
	if len(powers) == 0 {
		return nil, fmt.Errorf("activity contains no power samples")
	}
	return EstimatePowers(powers), nil
}

// EstimatePowers estimates a profile from a 1 Hz power series.
func EstimatePowers(powers []float64) *Profile {
	p := &Profile{
		Best20MinW: bestRollingPower(powers, 20*60),
		Best3MinW:  bestRollingPower(powers, 3*60),
		Samples:    len(powers),
	}
	if p.Best20MinW > 0 {
		p.FTPWatts = p.Best20MinW * 0.95
		p.CPWatts = p.FTPWatts
	}
	if p.CPWatts > 0 && p.Best3MinW > p.CPWatts {
		p.WPrimeJ = (p.Best3MinW - p.CPWatts) * 3 * 60
	}
	return p
}

// powerSeries builds a 1 Hz power series from the record messages, sorted
// by timestamp, carrying the last power forward across gaps of up to 30
// seconds so short dropouts don't fragment rolling windows.
func powerSeries(records []*fit.RecordMsg) []float64 {
	type row struct {
		ts    time.Time
		power float64
	}
	rows := make([]row, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.Power == math.MaxUint16 {
			continue
		}
		rows = append(rows, row{ts: rec.Timestamp, power: float64(rec.Power)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	out := make([]float64, 0, len(rows))
	var lastTS time.Time
	var lastPower float64
	for i, r := range rows {
		if i > 0 && !r.ts.IsZero() && r.ts.After(lastTS) {
			missing := int(math.Round(r.ts.Sub(lastTS).Seconds())) - 1
			if missing > 0 && missing <= 30 {
				for j := 0; j < missing; j++ {
					out = append(out, lastPower)
				}
			}
		}
		out = append(out, r.power)
		lastPower = r.power
		if !r.ts.IsZero() {
			lastTS = r.ts
		}
	}
	return out
}

// bestRollingPower returns the highest mean over any window of the given
// number of seconds; shorter series fall back to their overall mean.
func bestRollingPower(powers []float64, seconds int) float64 {
	if len(powers) == 0 || seconds <= 0 {
		return 0
	}
	if len(powers) < seconds {
		return mean(powers)
	}
	sum := 0.0
	for i := 0; i < seconds; i++ {
		sum += powers[i]
	}
	best := sum / float64(seconds)
	for i := seconds; i < len(powers); i++ {
		sum += powers[i] - powers[i-seconds]
		if current := sum / float64(seconds); current > best {
			best = current
		}
	}
	return best
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

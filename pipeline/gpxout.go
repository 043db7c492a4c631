package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// writePowerGPX writes the plan as a GPX 1.1 track with one custom
// <routepace:target_watts> extension per point. When startTime is set,
// points get one-second timestamps from it so head units that expect
// time can still load the file.
func writePowerGPX(path string, samples []PlanSample, name string, startTime time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintln(w, `<gpx creator="routepace" version="1.1" xmlns="http://www.topografix.com/GPX/1/1" xmlns:routepace="https://example.com/routepace">`)
	fmt.Fprintf(w, "  <trk><name>%s</name><trkseg>\n", name)
	for i, s := range samples {
		fmt.Fprintf(w, "    <trkpt lat=\"%.6f\" lon=\"%.6f\">\n", s.Lat, s.Lon)
		fmt.Fprintf(w, "      <ele>%.1f</ele>\n", s.ElevM)
		if !startTime.IsZero() {
			ts := startTime.Add(time.Duration(i) * time.Second)
			fmt.Fprintf(w, "      <time>%s</time>\n", ts.UTC().Format(time.RFC3339))
		}
		fmt.Fprintln(w, "      <extensions>")
		fmt.Fprintf(w, "        <routepace:target_watts>%.1f</routepace:target_watts>\n", s.TargetPowerW)
		fmt.Fprintln(w, "      </extensions>")
		fmt.Fprintln(w, "    </trkpt>")
	}
	fmt.Fprintln(w, "  </trkseg></trk>")
	fmt.Fprintln(w, "</gpx>")
	return w.Flush()
}

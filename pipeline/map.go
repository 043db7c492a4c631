package pipeline

import (
	"encoding/json"
	"html/template"
	"os"

	"routepace/fueling"
)

// mapPoint is one plotted route sample.
type mapPoint struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	PowerW   float64 `json:"power_w"`
	ElevM    float64 `json:"elev_m"`
	DistKM   float64 `json:"dist_km"`
	SpeedKMH float64 `json:"speed_kmh"`
	Color    string  `json:"color"`
}

type mapFuelMarker struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	DistKM     float64 `json:"dist_km"`
	TimeMin    float64 `json:"time_min"`
	CarbsG     float64 `json:"carbs_g"`
	FluidsML   float64 `json:"fluids_ml"`
	RefuelType string  `json:"refuel_type"`
	Notes      string  `json:"notes"`
	Fatigue    float64 `json:"fatigue"`
}

type mapLegendRow struct {
	Color string
	Label string
}

type mapPage struct {
	Title     string
	CenterLat float64
	CenterLon float64
	Points    template.JS
	Fuel      template.JS
	Summary   Summary
	FTPWatts  float64
	Legend    []mapLegendRow
}

var zoneColors = map[string]string{
	"recovery":  "#4CAF50",
	"endurance": "#8BC34A",
	"tempo":     "#FFEB3B",
	"threshold": "#FF9800",
	"vo2max":    "#FF5722",
	"anaerobic": "#F44336",
}

// writeMapHTML renders the plan as a self-contained Leaflet page: the
// route polyline colored by power zone, start/finish markers, refuel
// markers, a summary box and a zone legend.
func writeMapHTML(path string, samples []PlanSample, summary Summary, points []fueling.Point, ftp float64) error {
	pts := make([]mapPoint, len(samples))
	latSum, lonSum := 0.0, 0.0
	for i, s := range samples {
		pts[i] = mapPoint{
			Lat:      s.Lat,
			Lon:      s.Lon,
			PowerW:   s.TargetPowerW,
			ElevM:    s.ElevM,
			DistKM:   s.DistM / 1000.0,
			SpeedKMH: s.SpeedMS * 3.6,
			Color:    zoneColors[fueling.ZoneName(s.TargetPowerW, ftp)],
		}
		latSum += s.Lat
		lonSum += s.Lon
	}

	fuel := make([]mapFuelMarker, 0, len(points))
	for _, p := range points {
		idx := nearestByDistance(samples, p.DistanceKM)
		fuel = append(fuel, mapFuelMarker{
			Lat:        samples[idx].Lat,
			Lon:        samples[idx].Lon,
			DistKM:     p.DistanceKM,
			TimeMin:    p.TimeH * 60,
			CarbsG:     p.CarbsG,
			FluidsML:   p.FluidsML,
			RefuelType: p.RefuelType,
			Notes:      p.Notes,
			Fatigue:    p.FatigueIndex,
		})
	}

	legend := make([]mapLegendRow, 0, 6)
	for _, z := range fueling.PowerZones(ftp) {
		legend = append(legend, mapLegendRow{Color: zoneColors[z.Name], Label: z.Name})
	}

	ptsJSON, err := json.Marshal(pts)
	if err != nil {
		return err
	}
	fuelJSON, err := json.Marshal(fuel)
	if err != nil {
		return err
	}

	page := mapPage{
		Title:     "routepace pacing plan",
		CenterLat: latSum / float64(len(samples)),
		CenterLon: lonSum / float64(len(samples)),
		Points:    template.JS(ptsJSON),
		Fuel:      template.JS(fuelJSON),
		Summary:   summary,
		FTPWatts:  ftp,
		Legend:    legend,
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return mapTemplate.Execute(f, page)
}

func nearestByDistance(samples []PlanSample, distKM float64) int {
	best := 0
	bestDiff := -1.0
	for i, s := range samples {
		d := s.DistM/1000.0 - distKM
		if d < 0 {
			d = -d
		}
		if bestDiff < 0 || d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best
}

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>
  html, body, #map { height: 100%; margin: 0; }
  .panel {
    position: fixed; background: white; border: 2px solid #1976d2;
    border-radius: 8px; padding: 12px; font-family: Arial, sans-serif;
    font-size: 13px; z-index: 1000; box-shadow: 0 2px 10px rgba(0,0,0,0.2);
  }
  #summary { top: 10px; right: 10px; width: 260px; }
  #legend { bottom: 30px; left: 10px; }
  .dot { font-size: 18px; vertical-align: middle; }
</style>
</head>
<body>
<div id="map"></div>
<div id="summary" class="panel">
  <b>{{.Title}}</b>
  <table>
    <tr><td>Distance</td><td>{{printf "%.1f" .Summary.DistanceKM}} km</td></tr>
    <tr><td>Est. time</td><td>{{printf "%.2f" .Summary.TotalTimeH}} h</td></tr>
    <tr><td>Climbing</td><td>{{printf "%.0f" .Summary.ElevationGainM}} m</td></tr>
    <tr><td>Avg power</td><td>{{printf "%.0f" .Summary.AvgPowerW}} W</td></tr>
    <tr><td>Avg speed</td><td>{{printf "%.1f" .Summary.AvgSpeedKMH}} km/h</td></tr>
  </table>
</div>
<div id="legend" class="panel">
  <b>Power zones (FTP {{printf "%.0f" .FTPWatts}} W)</b><br/>
  {{range .Legend}}<span class="dot" style="color:{{.Color}}">&#9679;</span> {{.Label}}<br/>
  {{end}}
</div>
<script>
var points = {{.Points}};
var fuel = {{.Fuel}};
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], 12);
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);

for (var i = 0; i + 1 < points.length; i++) {
  var a = points[i], b = points[i + 1];
  L.polyline([[a.lat, a.lon], [b.lat, b.lon]], {
    color: a.color, weight: 5, opacity: 0.8
  }).bindPopup(
    'Distance: ' + a.dist_km.toFixed(1) + ' km<br/>' +
    'Power: ' + a.power_w.toFixed(0) + ' W<br/>' +
    'Speed: ' + a.speed_kmh.toFixed(1) + ' km/h<br/>' +
    'Elevation: ' + a.elev_m.toFixed(0) + ' m'
  ).addTo(map);
}

if (points.length > 0) {
  L.marker([points[0].lat, points[0].lon]).bindPopup('Start').addTo(map);
  var last = points[points.length - 1];
  L.marker([last.lat, last.lon]).bindPopup('Finish').addTo(map);
}

fuel.forEach(function (p, i) {
  L.circleMarker([p.lat, p.lon], {
    radius: 7,
    color: p.fatigue > 70 ? '#F44336' : (p.fatigue > 50 ? '#FF9800' : '#1976d2'),
    fillOpacity: 0.9
  }).bindPopup(
    '<b>Refuel #' + (i + 1) + ' (' + p.refuel_type + ')</b><br/>' +
    'Distance: ' + p.dist_km.toFixed(1) + ' km<br/>' +
    'Time: ' + p.time_min.toFixed(0) + ' min<br/>' +
    'Carbs: ' + p.carbs_g.toFixed(0) + ' g, fluids: ' + p.fluids_ml.toFixed(0) + ' ml<br/>' +
    p.notes
  ).addTo(map);
});
</script>
</body>
</html>
`))

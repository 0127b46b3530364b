package domain

import "strings"

// Station is a PEGELONLINE gauge descriptor.
type Station struct {
	UUID      string `json:"uuid"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
}

// Measurement is a single gauge reading in centimetres.
// Sources return them ascending by timestamp.
type Measurement struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// WaterStatus is the display classification of a water level.
type WaterStatus struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type waterBand struct {
	matches func(level int) bool
	status  WaterStatus
}

// waterBands is evaluated in order. Both thresholds are exclusive, so 500
// and 100 are "Normal".
var waterBands = []waterBand{
	{func(l int) bool { return l > 500 }, WaterStatus{"Hoch", "#f57c00", "Der Wasserstand ist erhöht. Bitte beachten Sie die aktuellen Warnungen."}},
	{func(l int) bool { return l < 100 }, WaterStatus{"Niedrig", "#1a73e8", "Der Wasserstand ist niedrig. Einschränkungen möglich."}},
}

var waterNormal = WaterStatus{"Normal", "#2e7d32", "Der Wasserstand ist im normalen Bereich. Keine Beeinträchtigungen erwartet."}

// ClassifyWater maps a level in cm to its status.
func ClassifyWater(level int) WaterStatus {
	for _, b := range waterBands {
		if b.matches(level) {
			return b.status
		}
	}
	return waterNormal
}

// SelectStationByShortName returns the station with the given short name,
// falling back to the first station.
func SelectStationByShortName(stations []Station, shortName string) (Station, bool) {
	for _, s := range stations {
		if s.ShortName == shortName {
			return s, true
		}
	}
	return firstStation(stations)
}

// SelectStationForRegion returns the first station whose long name contains
// region (case-insensitive), falling back to the first station.
func SelectStationForRegion(stations []Station, region string) (Station, bool) {
	if needle := strings.ToUpper(strings.TrimSpace(region)); needle != "" {
		for _, s := range stations {
			if strings.Contains(strings.ToUpper(s.LongName), needle) {
				return s, true
			}
		}
	}
	return firstStation(stations)
}

func firstStation(stations []Station) (Station, bool) {
	if len(stations) == 0 {
		return Station{}, false
	}
	return stations[0], true
}

// ChartPoint is one sample of the water level chart.
type ChartPoint struct {
	Label string `json:"label"` // "dd.MM"
	Value int    `json:"value"`
}

// ChartSeries samples every step-th measurement, starting with the first.
func ChartSeries(measurements []Measurement, step int) []ChartPoint {
	if step <= 0 {
		step = 1
	}
	points := make([]ChartPoint, 0, (len(measurements)+step-1)/step)
	for i := 0; i < len(measurements); i += step {
		m := measurements[i]
		points = append(points, ChartPoint{
			Label: FormatShortDate(m.Timestamp),
			Value: Round(m.Value),
		})
	}
	return points
}

// LatestLevel returns the rounded value of the most recent measurement.
func LatestLevel(measurements []Measurement) (int, bool) {
	if len(measurements) == 0 {
		return 0, false
	}
	return Round(measurements[len(measurements)-1].Value), true
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestClassifyWeather(t *testing.T) {
	tests := []struct {
		code int
		icon string
		desc string
	}{
		{0, "☀️", "Klarer Himmel"},
		{1, "⛅", "Teilweise bewölkt"},
		{2, "⛅", "Teilweise bewölkt"},
		{3, "☁️", "Bewölkt"},
		{45, "🌫️", "Neblig"},
		{48, "🌫️", "Neblig"},
		{51, "🌧️", "Regen"},
		{67, "🌧️", "Regen"},
		{71, "❄️", "Schnee"},
		{77, "❄️", "Schnee"},
		{80, "🌦️", "Schauer"},
		{82, "🌦️", "Schauer"},
		{95, "⛈️", "Gewitter"},
		{99, "⛈️", "Gewitter"},
		{100, "🌤️", "Wechselhaft"},
	}
	for _, tt := range tests {
		got := ClassifyWeather(tt.code)
		assert.Equal(t, tt.icon, got.Icon, "code %d", tt.code)
		assert.Equal(t, tt.desc, got.Description, "code %d", tt.code)
	}
}

func TestClassifyWeather_EveryCodeHasExactlyOneBand(t *testing.T) {
	for code := 0; code <= 99; code++ {
		got := ClassifyWeather(code)
		assert.NotEqual(t, weatherFallback, got, "code %d should match a band", code)
		assert.NotEmpty(t, got.Icon)
	}
}

func TestClassifyWater(t *testing.T) {
	tests := []struct {
		level int
		label string
		color string
	}{
		{501, "Hoch", "#f57c00"},
		{500, "Normal", "#2e7d32"},
		{100, "Normal", "#2e7d32"},
		{99, "Niedrig", "#1a73e8"},
		{0, "Niedrig", "#1a73e8"},
	}
	for _, tt := range tests {
		got := ClassifyWater(tt.level)
		assert.Equal(t, tt.label, got.Label, "level %d", tt.level)
		assert.Equal(t, tt.color, got.Color, "level %d", tt.level)
		assert.NotEmpty(t, got.Description)
	}
}

func TestWeatherDaysFromForecast(t *testing.T) {
	var f DailyForecast
	require.NoError(t, json.Unmarshal([]byte(`{
		"time": ["2024-01-01", "2024-01-02", "2024-01-03"],
		"weathercode": [3, null],
		"temperature_2m_max": [4.5, -2.5, 1.49],
		"temperature_2m_min": [-0.5, -3.6]
	}`), &f))

	days := WeatherDaysFromForecast(f)
	require.Len(t, days, 3)

	assert.Equal(t, WeatherDay{Date: "2024-01-01", WeatherCode: intPtr(3), MaxTemp: intPtr(5), MinTemp: intPtr(0)}, days[0])
	assert.Equal(t, WeatherDay{Date: "2024-01-02", MaxTemp: intPtr(-2), MinTemp: intPtr(-4)}, days[1])
	assert.Equal(t, WeatherDay{Date: "2024-01-03", MaxTemp: intPtr(1)}, days[2])
	assert.Equal(t, weatherFallback, days[1].Class())
}

func TestForecastForDate(t *testing.T) {
	days := []WeatherDay{{Date: "2024-01-01"}, {Date: "2024-01-02", WeatherCode: intPtr(61)}}

	got, ok := ForecastForDate(days, "2024-01-02")
	require.True(t, ok)
	assert.Equal(t, "🌧️", got.Class().Icon)

	_, ok = ForecastForDate(days, "2024-02-01")
	assert.False(t, ok)
	_, ok = ForecastForDate(days, "")
	assert.False(t, ok)
}

func threeDays() []WeatherDay {
	return []WeatherDay{
		{Date: "2024-01-01", WeatherCode: intPtr(0), MaxTemp: intPtr(3), MinTemp: intPtr(-1)},
		{Date: "2024-01-02", WeatherCode: intPtr(61), MaxTemp: intPtr(5), MinTemp: intPtr(1)},
		{Date: "2024-01-03", WeatherCode: intPtr(71), MaxTemp: intPtr(0), MinTemp: intPtr(-4)},
	}
}

func TestMergeConditions_CarriesLastKnownLevelForward(t *testing.T) {
	measurements := []Measurement{
		{Timestamp: "2024-01-01T12:00:00+01:00", Value: 120},
		{Timestamp: "2024-01-02T12:00:00+01:00", Value: 95},
	}

	got := MergeConditions(threeDays(), measurements)
	require.Len(t, got, 3)

	assert.Equal(t, 120, *got[0].WaterLevel)
	assert.False(t, got[0].WaterApproximate)
	assert.Equal(t, "Normal", got[0].WaterStatus.Label)

	assert.Equal(t, 95, *got[1].WaterLevel)
	assert.False(t, got[1].WaterApproximate)
	assert.Equal(t, "Niedrig", got[1].WaterStatus.Label)

	assert.Equal(t, 95, *got[2].WaterLevel)
	assert.True(t, got[2].WaterApproximate)
	assert.False(t, got[2].NoWaterData)
}

func TestMergeConditions_SameDayLastWriteWins(t *testing.T) {
	measurements := []Measurement{
		{Timestamp: "2024-01-01T00:00:00+01:00", Value: 480.4},
		{Timestamp: "2024-01-01T23:45:00+01:00", Value: 502.5},
	}

	got := MergeConditions(threeDays()[:1], measurements)
	require.Len(t, got, 1)
	assert.Equal(t, 503, *got[0].WaterLevel)
	assert.Equal(t, "Hoch", got[0].WaterStatus.Label)
}

func TestMergeConditions_OutOfOrderUsesNewestDate(t *testing.T) {
	measurements := []Measurement{
		{Timestamp: "2024-01-02T06:00:00+01:00", Value: 210},
		{Timestamp: "2023-12-31T06:00:00+01:00", Value: 150},
	}

	got := MergeConditions(threeDays(), measurements)
	assert.Equal(t, 210, *got[0].WaterLevel)
	assert.True(t, got[0].WaterApproximate)
	assert.Equal(t, 210, *got[2].WaterLevel)
}

func TestMergeConditions_NoMeasurements(t *testing.T) {
	got := MergeConditions(threeDays(), nil)
	require.Len(t, got, 3)
	for _, day := range got {
		assert.True(t, day.NoWaterData)
		assert.Nil(t, day.WaterLevel)
		assert.Nil(t, day.WaterStatus)
		assert.NotEmpty(t, day.Class.Icon, "weather is still shown")
	}
}

func TestMergeConditions_Labels(t *testing.T) {
	got := MergeConditions(threeDays(), nil)

	assert.Equal(t, "Heute", got[0].DayLabel)
	assert.Equal(t, "Di", got[1].DayLabel) // 2024-01-02 was a Tuesday
	assert.Equal(t, "03.01", got[2].DateLabel)
	assert.Equal(t, "❄️", got[2].Class.Icon)
}

func TestSelectStationByShortName(t *testing.T) {
	stations := []Station{
		{UUID: "1", ShortName: "SCHÖNA", LongName: "SCHÖNA"},
		{UUID: "2", ShortName: "DRESDEN", LongName: "DRESDEN"},
	}

	got, ok := SelectStationByShortName(stations, "DRESDEN")
	require.True(t, ok)
	assert.Equal(t, "2", got.UUID)

	got, ok = SelectStationByShortName(stations, "KÖLN")
	require.True(t, ok)
	assert.Equal(t, "1", got.UUID, "falls back to the first station")

	_, ok = SelectStationByShortName(nil, "DRESDEN")
	assert.False(t, ok)
}

func TestSelectStationForRegion(t *testing.T) {
	stations := []Station{
		{UUID: "1", LongName: "MAXAU"},
		{UUID: "2", LongName: "KÖLN"},
		{UUID: "3", LongName: "DRESDEN"},
	}

	got, _ := SelectStationForRegion(stations, "Dresden")
	assert.Equal(t, "3", got.UUID)

	got, _ = SelectStationForRegion(stations, "Köln")
	assert.Equal(t, "2", got.UUID)

	got, _ = SelectStationForRegion(stations, "Deutschland")
	assert.Equal(t, "1", got.UUID)
}

func TestChartSeries(t *testing.T) {
	var ms []Measurement
	for i := range 25 {
		ms = append(ms, Measurement{Timestamp: "2024-01-0" + string(rune('1'+i/10)) + "T00:00:00+01:00", Value: float64(100+i) + 0.5})
	}

	got := ChartSeries(ms, 10)
	assert.Equal(t, []ChartPoint{
		{Label: "01.01", Value: 101},
		{Label: "02.01", Value: 111},
		{Label: "03.01", Value: 121},
	}, got)

	assert.Empty(t, ChartSeries(nil, 10))
}

func TestLatestLevel(t *testing.T) {
	level, ok := LatestLevel([]Measurement{{Value: 10}, {Value: 212.6}})
	require.True(t, ok)
	assert.Equal(t, 213, level)

	_, ok = LatestLevel(nil)
	assert.False(t, ok)
}

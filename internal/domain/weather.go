package domain

// WeatherClass is the icon and German description for a WMO weather code.
type WeatherClass struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type weatherBand struct {
	max   int // inclusive upper bound
	class WeatherClass
}

// weatherBands is evaluated in order; the first band whose bound is at or
// above the code wins.
var weatherBands = []weatherBand{
	{0, WeatherClass{"☀️", "Klarer Himmel"}},
	{2, WeatherClass{"⛅", "Teilweise bewölkt"}},
	{3, WeatherClass{"☁️", "Bewölkt"}},
	{48, WeatherClass{"🌫️", "Neblig"}},
	{67, WeatherClass{"🌧️", "Regen"}},
	{77, WeatherClass{"❄️", "Schnee"}},
	{82, WeatherClass{"🌦️", "Schauer"}},
	{99, WeatherClass{"⛈️", "Gewitter"}},
}

var weatherFallback = WeatherClass{"🌤️", "Wechselhaft"}

// ClassifyWeather maps a WMO weather code to its display class.
func ClassifyWeather(code int) WeatherClass {
	for _, b := range weatherBands {
		if code <= b.max {
			return b.class
		}
	}
	return weatherFallback
}

// DailyForecast is the "daily" block of an Open-Meteo forecast response:
// parallel arrays indexed by day.
type DailyForecast struct {
	Time        []string   `json:"time"`
	WeatherCode []*int     `json:"weathercode"`
	MaxTemp     []*float64 `json:"temperature_2m_max"`
	MinTemp     []*float64 `json:"temperature_2m_min"`
}

// WeatherDay is one forecast day with rounded temperatures. A nil field means
// the provider sent no value for that day.
type WeatherDay struct {
	Date        string `json:"date"`
	WeatherCode *int   `json:"weatherCode"`
	MaxTemp     *int   `json:"maxTemp"`
	MinTemp     *int   `json:"minTemp"`
}

// Class returns the display class; a missing code uses the fallback class.
func (d WeatherDay) Class() WeatherClass {
	if d.WeatherCode == nil {
		return weatherFallback
	}
	return ClassifyWeather(*d.WeatherCode)
}

// WeatherDaysFromForecast zips the parallel arrays into one record per date.
// Shorter arrays leave the trailing fields nil instead of dropping days.
func WeatherDaysFromForecast(f DailyForecast) []WeatherDay {
	days := make([]WeatherDay, len(f.Time))
	for i, date := range f.Time {
		days[i] = WeatherDay{
			Date:        date,
			WeatherCode: intAt(f.WeatherCode, i),
			MaxTemp:     roundedAt(f.MaxTemp, i),
			MinTemp:     roundedAt(f.MinTemp, i),
		}
	}
	return days
}

// ForecastForDate returns the forecast day matching an ISO date.
func ForecastForDate(days []WeatherDay, isoDay string) (WeatherDay, bool) {
	if isoDay == "" {
		return WeatherDay{}, false
	}
	for _, d := range days {
		if d.Date == isoDay {
			return d, true
		}
	}
	return WeatherDay{}, false
}

func intAt(vals []*int, i int) *int {
	if i >= len(vals) || vals[i] == nil {
		return nil
	}
	v := *vals[i]
	return &v
}

func roundedAt(vals []*float64, i int) *int {
	if i >= len(vals) || vals[i] == nil {
		return nil
	}
	v := Round(*vals[i])
	return &v
}

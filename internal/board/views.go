package board

import (
	"time"

	"github.com/couchcryptid/event-weather-board/internal/domain"
)

// User-facing placeholder messages.
const (
	MsgNoEvents           = "Keine Veranstaltungen gefunden."
	MsgEventsFailed       = "Fehler beim Laden der Veranstaltungen"
	MsgEventNotFound      = "Veranstaltung nicht gefunden"
	MsgUnexpectedError    = "Ein Fehler ist aufgetreten. Bitte versuche es später erneut."
	MsgWeatherUnavailable = "Wetterdaten nicht verfügbar"
	MsgWaterUnavailable   = "Pegeldaten nicht verfügbar"
	MsgEventDayNoForecast = "Wettervorhersage für den Veranstaltungstag noch nicht verfügbar"
)

const previewLength = 100

// Location is a named coordinate.
type Location struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// EventCard is an event with its shortened card text.
type EventCard struct {
	domain.Event
	Preview string `json:"preview"`
}

// MapMarker is one pin on the events map.
type MapMarker struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Region string  `json:"region"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
}

// EventsPage is the joined result of one events list load.
type EventsPage struct {
	SnapshotID  string      `json:"snapshotId"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Events      []EventCard `json:"events"`
	Markers     []MapMarker `json:"markers"`
	Message     string      `json:"message,omitempty"`
}

// WeatherCard is one day of the forecast strip.
type WeatherCard struct {
	Date        string `json:"date"`
	DayLabel    string `json:"dayLabel"`
	DateLabel   string `json:"dateLabel"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	MaxTemp     *int   `json:"maxTemp"`
	MinTemp     *int   `json:"minTemp"`
}

// WeatherPanel is the forecast for one location. Today repeats the
// first card for the headline display.
type WeatherPanel struct {
	Location    Location      `json:"location"`
	Label       string        `json:"label"`
	GeneratedAt time.Time     `json:"generatedAt"`
	Today       *WeatherCard  `json:"today,omitempty"`
	Days        []WeatherCard `json:"days"`
	Message     string        `json:"message,omitempty"`
}

// WaterPanel is the current level of a gauge plus its chart. Measurements
// is the full seven-day series; Chart samples every tenth reading.
type WaterPanel struct {
	Station      *domain.Station      `json:"station,omitempty"`
	GeneratedAt  time.Time            `json:"generatedAt"`
	Level        *int                 `json:"level,omitempty"`
	Status       *domain.WaterStatus  `json:"status,omitempty"`
	Chart        []domain.ChartPoint  `json:"chart"`
	Measurements []domain.Measurement `json:"measurements"`
	Message      string               `json:"message,omitempty"`
}

// ConditionsPanel joins the forecast and gauge panels with the per-day merge.
// Either panel may carry a placeholder message while the other is complete.
type ConditionsPanel struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	Weather     WeatherPanel           `json:"weather"`
	Water       WaterPanel             `json:"water"`
	Days        []domain.DayConditions `json:"days"`
}

// EventDayWeather is the forecast for the day an event takes place.
type EventDayWeather struct {
	Available bool         `json:"available"`
	Card      *WeatherCard `json:"card,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// EventDetailPage is the joined result of one event detail load. When
// NotFound is set only Message is populated.
type EventDetailPage struct {
	Event       *domain.Event          `json:"event,omitempty"`
	GeneratedAt time.Time              `json:"generatedAt"`
	Weather     WeatherPanel           `json:"weather"`
	Water       WaterPanel             `json:"water"`
	Conditions  []domain.DayConditions `json:"conditions"`
	EventDay    EventDayWeather        `json:"eventDay"`
	NotFound    bool                   `json:"notFound"`
	Message     string                 `json:"message,omitempty"`
}

func newWeatherCard(day domain.WeatherDay, index int) WeatherCard {
	class := day.Class()
	return WeatherCard{
		Date:        day.Date,
		DayLabel:    domain.DayLabel(day.Date, index),
		DateLabel:   domain.FormatShortDate(day.Date),
		Icon:        class.Icon,
		Description: class.Description,
		MaxTemp:     day.MaxTemp,
		MinTemp:     day.MinTemp,
	}
}

func newEventCard(ev domain.Event) EventCard {
	return EventCard{Event: ev, Preview: domain.Truncate(ev.Description, previewLength)}
}

func newMapMarker(ev domain.Event) MapMarker {
	return MapMarker{ID: ev.ID, Title: ev.Title, Region: ev.Region, Lat: ev.Lat, Lng: ev.Lng}
}

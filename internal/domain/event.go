package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// RawEvent is a single event as returned by the Ticketmaster Discovery API.
// Every field is optional; the normalizer supplies a fallback for each one.
type RawEvent struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	URL             string              `json:"url"`
	Description     string              `json:"description"`
	Info            string              `json:"info"`
	PleaseNote      string              `json:"pleaseNote"`
	Dates           *RawDates           `json:"dates,omitempty"`
	Images          []RawImage          `json:"images,omitempty"`
	Classifications []RawClassification `json:"classifications,omitempty"`
	Embedded        *RawEventEmbedded   `json:"_embedded,omitempty"`
}

// RawDates wraps the start block of an event.
type RawDates struct {
	Start *RawStart `json:"start,omitempty"`
}

// RawStart holds the event start as local date/time strings and an optional UTC instant.
type RawStart struct {
	LocalDate string `json:"localDate"` // "2025-03-02"
	LocalTime string `json:"localTime"` // "19:30:00"
	DateTime  string `json:"dateTime"`  // "2025-03-02T18:30:00Z"
}

// RawImage is one rendition of the event artwork.
type RawImage struct {
	Ratio  string `json:"ratio"` // "16_9", "3_2", "4_3"
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// RawClassification carries the segment ("Music") and genre ("Rock") of an event.
type RawClassification struct {
	Segment *RawNamed `json:"segment,omitempty"`
	Genre   *RawNamed `json:"genre,omitempty"`
}

// RawNamed is the {id, name} pair Ticketmaster uses for cities, segments, and genres.
type RawNamed struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// RawEventEmbedded holds the venues attached to an event.
type RawEventEmbedded struct {
	Venues []RawVenue `json:"venues"`
}

// RawVenue is the venue block of an event.
type RawVenue struct {
	Name       string       `json:"name"`
	PostalCode string       `json:"postalCode"`
	City       *RawNamed    `json:"city,omitempty"`
	Address    *RawAddress  `json:"address,omitempty"`
	Location   *RawLocation `json:"location,omitempty"`
}

// RawAddress is the street address of a venue.
type RawAddress struct {
	Line1 string `json:"line1"`
}

// RawLocation is a venue position. Ticketmaster sends the values as strings.
type RawLocation struct {
	Latitude  Coordinate `json:"latitude"`
	Longitude Coordinate `json:"longitude"`
}

// Coordinate is a JSON value that may arrive as a string or a number.
// Unparseable input is kept as text and rejected later by Float.
type Coordinate string

// UnmarshalJSON accepts "52.5", 52.5, and null.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
		return nil
	}
	*c = Coordinate(data)
	return nil
}

// Float parses the coordinate. A zero value is reported as not ok because the
// upstream uses it as a placeholder for "unknown".
func (c Coordinate) Float() (float64, bool) {
	v, err := strconv.ParseFloat(string(c), 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}

// Event is the display model produced by NormalizeEvent.
type Event struct {
	ID               int      `json:"id"`
	ExternalID       string   `json:"externalId"`
	Title            string   `json:"title"`
	Date             string   `json:"date"`
	Region           string   `json:"region"`
	GeoRegion        string   `json:"geoRegion"`
	Lat              float64  `json:"lat"`
	Lng              float64  `json:"lng"`
	Image            string   `json:"image"`
	Description      string   `json:"description"`
	Tags             []string `json:"tags"`
	Time             string   `json:"time"`
	Address          string   `json:"address"`
	URL              string   `json:"url"`
	WaterStationHint string   `json:"waterStation"`

	// LocalDate is the venue-local start date (YYYY-MM-DD), used to pick the
	// forecast day of the event. Empty when the source has no start block.
	LocalDate string `json:"localDate,omitempty"`
}

// Now returns the current UTC time from the package clock. Snapshots and
// published batches are stamped with it.
func Now() time.Time {
	return clock.Now().UTC()
}

// EventBatch is one loaded events page, stamped for downstream consumers.
type EventBatch struct {
	SnapshotID  string
	PublishedAt time.Time
	Events      []Event
}

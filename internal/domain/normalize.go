package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // Europe/Berlin must resolve without system zoneinfo.
)

// Fallback values used when the events API omits a field.
const (
	DefaultRegion       = "Deutschland"
	DefaultLat          = 51.1657
	DefaultLng          = 10.4515
	DefaultTag          = "Event"
	DefaultWaterStation = "DRESDEN"

	unknownDateLabel = "Datum unbekannt"
	unknownTimeLabel = "Siehe Website"
	minImageWidth    = 500
)

// Normalizer converts raw events into the display model.
type Normalizer struct {
	resolver *RegionResolver
	location *time.Location
}

// NewNormalizer creates a Normalizer. resolver may be nil; loc is the zone
// used to display UTC start instants and defaults to Europe/Berlin.
func NewNormalizer(resolver *RegionResolver, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = berlin()
	}
	return &Normalizer{resolver: resolver, location: loc}
}

// Normalize converts raw into an Event at display position index (0-based).
// Every field has a fallback, so the result is always complete. Region
// resolution is the only blocking step and degrades to "".
func (n *Normalizer) Normalize(ctx context.Context, raw RawEvent, index int) Event {
	venue := firstVenue(raw)
	city := venueCity(venue)
	lat, lng, located := venueCoordinates(venue)

	ev := Event{
		ID:               index + 1,
		ExternalID:       raw.ID,
		Title:            raw.Name,
		Date:             n.formatStart(raw.Dates),
		Region:           city,
		Lat:              lat,
		Lng:              lng,
		Image:            pickImage(raw.Images, index),
		Description:      buildDescription(raw, city),
		Tags:             collectTags(raw.Classifications),
		Time:             formatStartTime(raw.Dates),
		Address:          formatAddress(venue, city),
		URL:              raw.URL,
		WaterStationHint: DefaultWaterStation,
		LocalDate:        startLocalDate(raw.Dates),
	}

	if n.resolver != nil {
		if located {
			ev.GeoRegion = n.resolver.Resolve(ctx, city, lat, lng)
		} else {
			ev.GeoRegion = n.resolver.Lookup(city)
		}
	}
	return ev
}

// NormalizeEvent normalizes raw with the default display zone.
func NormalizeEvent(ctx context.Context, raw RawEvent, index int, resolver *RegionResolver) Event {
	return NewNormalizer(resolver, nil).Normalize(ctx, raw, index)
}

func firstVenue(raw RawEvent) *RawVenue {
	if raw.Embedded == nil || len(raw.Embedded.Venues) == 0 {
		return nil
	}
	return &raw.Embedded.Venues[0]
}

func venueCity(v *RawVenue) string {
	if v == nil || v.City == nil || v.City.Name == "" {
		return DefaultRegion
	}
	return v.City.Name
}

// venueCoordinates falls back per axis to the centroid of Germany. located
// is true only when both axes came from the venue.
func venueCoordinates(v *RawVenue) (lat, lng float64, located bool) {
	lat, lng = DefaultLat, DefaultLng
	if v == nil || v.Location == nil {
		return lat, lng, false
	}
	latOK, lngOK := false, false
	if f, ok := v.Location.Latitude.Float(); ok {
		lat, latOK = f, true
	}
	if f, ok := v.Location.Longitude.Float(); ok {
		lng, lngOK = f, true
	}
	return lat, lng, latOK && lngOK
}

func (n *Normalizer) formatStart(dates *RawDates) string {
	if dates == nil || dates.Start == nil {
		return unknownDateLabel
	}
	start := dates.Start
	if start.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, start.DateTime); err == nil {
			return FormatLongDate(t.In(n.location))
		}
	}
	if t, err := time.Parse(isoDate, start.LocalDate); err == nil {
		return FormatLongDate(t)
	}
	return unknownDateLabel
}

func formatStartTime(dates *RawDates) string {
	if dates == nil || dates.Start == nil || dates.Start.LocalTime == "" {
		return unknownTimeLabel
	}
	return FormatTime(dates.Start.LocalTime)
}

func startLocalDate(dates *RawDates) string {
	if dates == nil || dates.Start == nil {
		return ""
	}
	if dates.Start.LocalDate != "" {
		return dates.Start.LocalDate
	}
	return dayPart(dates.Start.DateTime)
}

// PlaceholderImage is the deterministic stand-in for events without usable artwork.
func PlaceholderImage(index int) string {
	return fmt.Sprintf("https://picsum.photos/1200/400?random=%d", index)
}

// pickImage returns the first wide 16:9 rendition. Ticketmaster encodes the
// ratio as "16_9"; the colon form is accepted as well.
func pickImage(images []RawImage, index int) string {
	for _, img := range images {
		if (img.Ratio == "16_9" || img.Ratio == "16:9") && img.Width > minImageWidth && img.URL != "" {
			return img.URL
		}
	}
	return PlaceholderImage(index)
}

func buildDescription(raw RawEvent, city string) string {
	var parts []string
	for _, s := range []string{raw.Description, raw.Info, raw.PleaseNote} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s findet in %s statt.", raw.Name, city)
	}
	return strings.Join(parts, "\n\n")
}

// collectTags flattens segment and genre names in source order, skipping
// missing and empty names. Duplicates are kept.
func collectTags(classifications []RawClassification) []string {
	var tags []string
	for _, c := range classifications {
		if c.Segment != nil && c.Segment.Name != "" {
			tags = append(tags, c.Segment.Name)
		}
		if c.Genre != nil && c.Genre.Name != "" {
			tags = append(tags, c.Genre.Name)
		}
	}
	if len(tags) == 0 {
		return []string{DefaultTag}
	}
	return tags
}

func formatAddress(v *RawVenue, city string) string {
	if v == nil {
		return city
	}
	var line1 string
	if v.Address != nil {
		line1 = v.Address.Line1
	}
	return fmt.Sprintf("%s, %s %s", line1, v.PostalCode, city)
}

func berlin() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}
	return loc
}

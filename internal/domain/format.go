package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

var germanWeekdays = [...]string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

const isoDate = "2006-01-02"

// FormatLongDate renders t as "02. März 2025".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%02d. %s %d", t.Day(), germanMonths[t.Month()-1], t.Year())
}

// FormatShortDate renders an ISO date ("2026-02-20") as "20.02".
// Input that is not an ISO date is returned unchanged.
func FormatShortDate(isoDay string) string {
	t, err := time.Parse(isoDate, dayPart(isoDay))
	if err != nil {
		return isoDay
	}
	return t.Format("02.01")
}

// FormatWeekday renders an ISO date as the German short weekday ("Fr").
func FormatWeekday(isoDay string) string {
	t, err := time.Parse(isoDate, dayPart(isoDay))
	if err != nil {
		return ""
	}
	return germanWeekdays[t.Weekday()]
}

// DayLabel returns "Heute" for the first forecast day and the short weekday otherwise.
func DayLabel(isoDay string, index int) string {
	if index == 0 {
		return "Heute"
	}
	return FormatWeekday(isoDay)
}

// FormatTime renders a local time ("19:30:00") as "19:30 Uhr".
func FormatTime(localTime string) string {
	parts := strings.SplitN(localTime, ":", 3)
	if len(parts) < 2 {
		return localTime + " Uhr"
	}
	return parts[0] + ":" + parts[1] + " Uhr"
}

// Truncate cuts text to max runes and appends "..." when it was longer.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

// Round rounds half-up (toward positive infinity), so -2.5 becomes -2.
// Temperatures and water levels are displayed with this rule.
func Round(v float64) int {
	f := math.Floor(v)
	if v-f >= 0.5 {
		f++
	}
	return int(f)
}

// dayPart truncates an ISO timestamp to its date portion.
func dayPart(ts string) string {
	if len(ts) >= len(isoDate) {
		return ts[:len(isoDate)]
	}
	return ts
}

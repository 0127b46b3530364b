package domain

// DayConditions is one merged forecast day: weather plus the river level
// that applies to it.
type DayConditions struct {
	Date      string       `json:"date"`
	DayLabel  string       `json:"dayLabel"`
	DateLabel string       `json:"dateLabel"`
	Weather   WeatherDay   `json:"weather"`
	Class     WeatherClass `json:"class"`

	// WaterLevel is nil only when NoWaterData is set.
	WaterLevel       *int         `json:"waterLevel"`
	WaterApproximate bool         `json:"waterApproximate"`
	WaterStatus      *WaterStatus `json:"waterStatus,omitempty"`
	NoWaterData      bool         `json:"noWaterData"`
}

// dailyLevels indexes rounded levels by ISO date.
type dailyLevels struct {
	byDate map[string]int
	latest string
}

// indexLevels keys each measurement by its date portion. Later measurements
// of the same day overwrite earlier ones. latest is the greatest date key, so
// an out-of-order series still yields the newest day as last known level.
func indexLevels(measurements []Measurement) dailyLevels {
	idx := dailyLevels{byDate: make(map[string]int, len(measurements))}
	for _, m := range measurements {
		day := dayPart(m.Timestamp)
		if day == "" {
			continue
		}
		idx.byDate[day] = Round(m.Value)
		if day > idx.latest {
			idx.latest = day
		}
	}
	return idx
}

func (d dailyLevels) lastKnown() (int, bool) {
	if d.latest == "" {
		return 0, false
	}
	return d.byDate[d.latest], true
}

// MergeConditions joins forecast days with gauge measurements by date.
// Days without an exact reading carry the last known level forward and are
// marked approximate; with no readings at all every day reports NoWaterData.
// One record is returned per forecast day.
func MergeConditions(days []WeatherDay, measurements []Measurement) []DayConditions {
	levels := indexLevels(measurements)
	lastKnown, haveLast := levels.lastKnown()

	out := make([]DayConditions, len(days))
	for i, day := range days {
		c := DayConditions{
			Date:      day.Date,
			DayLabel:  DayLabel(day.Date, i),
			DateLabel: FormatShortDate(day.Date),
			Weather:   day,
			Class:     day.Class(),
		}

		level, exact := levels.byDate[day.Date]
		switch {
		case exact:
		case haveLast:
			level = lastKnown
			c.WaterApproximate = true
		default:
			c.NoWaterData = true
			out[i] = c
			continue
		}

		status := ClassifyWater(level)
		c.WaterLevel = &level
		c.WaterStatus = &status
		out[i] = c
	}
	return out
}

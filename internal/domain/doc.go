// Package domain turns raw responses from three public German data sources
// into the display model of the event board.
//
// # Data Sources
//
// Events come from the Ticketmaster Discovery API v2
// (https://developer.ticketmaster.com/products-and-docs/apis/discovery-api/v2/).
// The list endpoint nests events under "_embedded.events"; every field of an
// event is optional in practice.
//
// Weather comes from Open-Meteo (https://open-meteo.com/en/docs). The daily
// block is a set of parallel arrays indexed by day:
//
//	time                ["2025-03-02", "2025-03-03", ...]
//	weathercode         [3, 61, ...]          WMO code, 0..99
//	temperature_2m_max  [7.4, 9.1, ...]       °C
//	temperature_2m_min  [-0.5, 2.3, ...]      °C
//
// River levels come from PEGELONLINE (https://pegelonline.wsv.de/webservice/dokuRestapi).
// Measurements of the water level ("W") are centimetres at the gauge,
// ordered ascending by timestamp, sampled every 15 minutes:
//
//	{"timestamp": "2025-03-02T14:15:00+01:00", "value": 118.0}
//
// # Display Conventions
//
// All user-facing strings are German. Dates render as "02. März 2025"
// (long), "02.03" (short) and "Mo" (weekday); times as "19:30 Uhr".
// Temperatures and levels are rounded half-up to whole numbers.
//
// Missing data never fails normalization. Each field has a fixed fallback:
//
//	date       "Datum unbekannt"
//	region     "Deutschland"
//	lat/lng    51.1657, 10.4515 (centroid of Germany)
//	image      https://picsum.photos/1200/400?random=<index>
//	tags       ["Event"]
//	time       "Siehe Website"
//
// # Water Status
//
// Gauge levels are classified with exclusive thresholds:
//
//	> 500 cm   Hoch     #f57c00
//	< 100 cm   Niedrig  #1a73e8
//	otherwise  Normal   #2e7d32
package domain

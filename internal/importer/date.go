package importer

import "time"

// Accepted date layouts for the first column. No timezone interpretation:
// values are wall-clock calendar dates, parsed to UTC midnight.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
}

// ParseDate validates a date cell against the two accepted formats.
// A value matching neither layout, or naming a calendar day that does not
// exist, is rejected; the engine never guesses intent.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

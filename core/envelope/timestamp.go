package envelope

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Layouts accepted for string timestamps. Naive layouts are interpreted in
// the local zone, matching what the backend's isoformat() produces.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// millisThreshold separates unix seconds from unix milliseconds: as seconds
// it lies past the year 5000, as milliseconds in 1973.
const millisThreshold = 1e11

// ParseTimestamp reads a timestamp given either as a string in one of the
// accepted layouts or as a unix epoch number. Numbers at or above 1e11 are
// milliseconds, smaller ones seconds (fractional allowed).
func ParseTimestamp(raw json.RawMessage) (time.Time, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		for _, layout := range timestampLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}

	var secs float64
	if err := json.Unmarshal(raw, &secs); err == nil && secs > 0 {
		if secs >= millisThreshold {
			return time.UnixMilli(int64(math.Round(secs))), true
		}
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)), true
	}

	return time.Time{}, false
}

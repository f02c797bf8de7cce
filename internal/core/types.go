// Package core holds the types and configuration shared by the autodj components.
package core

import (
	"regexp"
	"strconv"
	"time"
)

// Track is a candidate for playback as returned by the video platform's search or
// metadata lookup. Only ID, Title and Channel take part in ranking.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Channel   string `json:"channelTitle"`
	Thumbnail string `json:"thumbnail,omitempty"`
	// Duration is the platform's ISO-8601 length, e.g. "PT3M45S".
	Duration string `json:"duration,omitempty"`
	URL      string `json:"url,omitempty"`
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// Length parses Duration. It returns zero when the duration is missing or malformed.
func (t Track) Length() time.Duration {
	match := isoDurationPattern.FindStringSubmatch(t.Duration)
	if match == nil {
		return 0
	}

	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if match[i+1] == "" {
			continue
		}
		value, err := strconv.Atoi(match[i+1])
		if err != nil {
			return 0
		}
		total += time.Duration(value) * unit
	}
	return total
}

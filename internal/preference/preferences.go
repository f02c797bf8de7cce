package preference

import (
	"time"

	"autodj/internal/genre"
)

const (
	// skipRetention is how long a skip event is kept in SkipPatterns.
	skipRetention = 24 * time.Hour
	// maxSkipPatterns caps SkipPatterns after the retention filter.
	maxSkipPatterns = 100
	// recentSkipWindow is the window of the recent skip count.
	recentSkipWindow = time.Hour
	// recentSkipThreshold is the recent skip count above which the heavy penalty applies.
	recentSkipThreshold = 2

	lightSkipPenalty = 0.5
	heavySkipPenalty = 2.0
	likeReward       = 2.0

	// suppressSkipCount and suppressPreference gate ShouldSkipTrack: a genre is suppressed
	// once skipped more than suppressSkipCount times while scoring below suppressPreference.
	suppressSkipCount  = 3
	suppressPreference = 1.0

	// skipPenaltyWeight scales a genre's skip count in the ranking score.
	skipPenaltyWeight = 0.5
	// highScoringPercent of the ranked list, rounded up, forms the high scoring head.
	highScoringPercent = 70
	// varietyInterval places a variety track at every position divisible by it.
	varietyInterval = 4
	// recommendationPool is how many top genres RecommendedGenre chooses from.
	recommendationPool = 3
)

// SkipEvent records one skip. Timestamp is in Unix milliseconds.
type SkipEvent struct {
	TrackID   string `json:"trackId"`
	Timestamp int64  `json:"timestamp"`
}

// Preferences is the persisted preference store.
type Preferences struct {
	SkippedGenres   map[genre.Genre]int     `json:"skippedGenres"`
	PreferredGenres map[genre.Genre]float64 `json:"preferredGenres"`
	SkipPatterns    []SkipEvent             `json:"skipPatterns"`
	LikedArtists    map[string]int          `json:"likedArtists"`
}

// NewPreferences returns an empty store.
func NewPreferences() Preferences {
	return Preferences{
		SkippedGenres:   make(map[genre.Genre]int),
		PreferredGenres: make(map[genre.Genre]float64),
		SkipPatterns:    []SkipEvent{},
		LikedArtists:    make(map[string]int),
	}
}

// normalize replaces maps and slices missing from a decoded document with empty ones.
func (p Preferences) normalize() Preferences {
	if p.SkippedGenres == nil {
		p.SkippedGenres = make(map[genre.Genre]int)
	}
	if p.PreferredGenres == nil {
		p.PreferredGenres = make(map[genre.Genre]float64)
	}
	if p.SkipPatterns == nil {
		p.SkipPatterns = []SkipEvent{}
	}
	if p.LikedArtists == nil {
		p.LikedArtists = make(map[string]int)
	}
	return p
}

// Clone returns a deep copy.
func (p Preferences) Clone() Preferences {
	clone := Preferences{
		SkippedGenres:   make(map[genre.Genre]int, len(p.SkippedGenres)),
		PreferredGenres: make(map[genre.Genre]float64, len(p.PreferredGenres)),
		SkipPatterns:    make([]SkipEvent, len(p.SkipPatterns)),
		LikedArtists:    make(map[string]int, len(p.LikedArtists)),
	}
	for g, count := range p.SkippedGenres {
		clone.SkippedGenres[g] = count
	}
	for g, score := range p.PreferredGenres {
		clone.PreferredGenres[g] = score
	}
	copy(clone.SkipPatterns, p.SkipPatterns)
	for artist, count := range p.LikedArtists {
		clone.LikedArtists[artist] = count
	}
	return clone
}

// pruneSkipPatterns drops events older than skipRetention, then keeps the newest
// maxSkipPatterns of what remains.
func pruneSkipPatterns(events []SkipEvent, nowMs int64) []SkipEvent {
	retention := skipRetention.Milliseconds()

	kept := make([]SkipEvent, 0, len(events))
	for _, event := range events {
		if nowMs-event.Timestamp < retention {
			kept = append(kept, event)
		}
	}

	if len(kept) > maxSkipPatterns {
		kept = kept[len(kept)-maxSkipPatterns:]
	}
	return kept
}

// countSkipsWithin counts events less than window before nowMs, across all genres.
func countSkipsWithin(events []SkipEvent, nowMs int64, window time.Duration) int {
	count := 0
	for _, event := range events {
		if nowMs-event.Timestamp < window.Milliseconds() {
			count++
		}
	}
	return count
}

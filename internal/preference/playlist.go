package preference

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"autodj/internal/core"
	"autodj/internal/genre"
)

type scoredTrack struct {
	track core.Track
	score float64
}

// Score returns the ranking score of a track: genre preference plus artist likes, minus
// half the genre's skip count.
func (e *Engine) Score(track core.Track) float64 {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.score(track)
}

func (e *Engine) score(track core.Track) float64 {
	g := genre.Classify(track.Title, track.Channel)
	return e.prefs.PreferredGenres[g] +
		float64(e.prefs.LikedArtists[track.Channel]) -
		skipPenaltyWeight*float64(e.prefs.SkippedGenres[g])
}

// UpdateAdaptivePlaylist drops suppressed candidates, ranks the rest by score and mixes
// lower ranked tracks back in for variety. The result replaces the current adaptive
// playlist and a copy is returned.
func (e *Engine) UpdateAdaptivePlaylist(candidates []core.Track) []core.Track {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	scored := make([]scoredTrack, 0, len(candidates))
	for _, track := range candidates {
		if e.shouldSkip(track) {
			continue
		}
		scored = append(scored, scoredTrack{track: track, score: e.score(track)})
	}
	suppressed := len(candidates) - len(scored)

	slices.SortStableFunc(scored, func(a, b scoredTrack) int {
		return cmp.Compare(b.score, a.score)
	})

	ranked := make([]core.Track, len(scored))
	for i, st := range scored {
		ranked[i] = st.track
	}

	e.playlist = interleave(ranked)

	e.logger.Debug("Updated adaptive playlist",
		zap.Int("candidates", len(candidates)),
		zap.Int("suppressed", suppressed),
		zap.Int("playlistSize", len(e.playlist)))

	e.metrics.RecordSuppressed(suppressed)
	e.metrics.SetPlaylistSize(len(e.playlist))

	return slices.Clone(e.playlist)
}

// AdaptivePlaylist returns a copy of the playlist built by the last UpdateAdaptivePlaylist.
func (e *Engine) AdaptivePlaylist() []core.Track {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return slices.Clone(e.playlist)
}

// interleave splits ranked into a high scoring head (the top highScoringPercent, rounded
// up) and a variety tail, then emits a variety track at every varietyInterval-th position
// and head tracks elsewhere, falling back to whichever list still has tracks.
func interleave(ranked []core.Track) []core.Track {
	highCount := (len(ranked)*highScoringPercent + 99) / 100
	high := ranked[:highCount]
	variety := ranked[highCount:]

	result := make([]core.Track, 0, len(ranked))
	for i := 0; len(high) > 0 || len(variety) > 0; i++ {
		switch {
		case i%varietyInterval == 0 && len(variety) > 0:
			result = append(result, variety[0])
			variety = variety[1:]
		case len(high) > 0:
			result = append(result, high[0])
			high = high[1:]
		default:
			result = append(result, variety[0])
			variety = variety[1:]
		}
	}

	return result
}

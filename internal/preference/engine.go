// Package preference learns genre and artist preferences from skips and likes and uses
// them to filter and reorder autoplay candidates.
package preference

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"autodj/internal/core"
	"autodj/internal/genre"
)

// Storage loads and saves the preference store. Load must not fail: it returns def when
// nothing usable is stored.
type Storage interface {
	Load(def Preferences) Preferences
	Save(prefs Preferences) error
}

// Rand is the random source of RecommendedGenre. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Recorder receives engine activity for metrics.
type Recorder interface {
	RecordSkip(g genre.Genre)
	RecordLike(g genre.Genre)
	RecordRecommendation(g genre.Genre)
	RecordSuppressed(count int)
	RecordSaveError()
	SetPlaylistSize(size int)
	ObservePreferences(prefs Preferences)
}

// Engine owns the preference store. All methods are safe for concurrent use and each
// mutation is saved before the method returns.
type Engine struct {
	storage  Storage
	rng      Rand
	metrics  Recorder
	logger   *zap.Logger
	mutex    sync.Mutex
	prefs    Preferences
	playlist []core.Track
}

// NewEngine loads the preference store from storage. A nil rng is replaced by a
// clock-seeded PCG source and a nil logger by a no-op logger.
func NewEngine(storage Storage, rng Rand, logger *zap.Logger) *Engine {
	if rng == nil {
		rng = NewRand(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	prefs := storage.Load(NewPreferences()).normalize()

	logger.Debug("Loaded preferences",
		zap.Int("skippedGenres", len(prefs.SkippedGenres)),
		zap.Int("preferredGenres", len(prefs.PreferredGenres)),
		zap.Int("skipPatterns", len(prefs.SkipPatterns)),
		zap.Int("likedArtists", len(prefs.LikedArtists)))

	return &Engine{
		storage:  storage,
		rng:      rng,
		metrics:  nopRecorder{},
		logger:   logger,
		prefs:    prefs,
		playlist: []core.Track{},
	}
}

// NewRand returns a PCG random source. A zero seed seeds from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SetMetrics sets the recorder that receives engine activity.
func (e *Engine) SetMetrics(recorder Recorder) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if recorder == nil {
		recorder = nopRecorder{}
	}
	e.metrics = recorder
	e.metrics.ObservePreferences(e.prefs)
}

// RecordSkip lowers the preference of the track's genre. The penalty grows when more
// than recentSkipThreshold skips of any genre happened in the last hour.
func (e *Engine) RecordSkip(track core.Track, now time.Time) {
	g := genre.Classify(track.Title, track.Channel)
	nowMs := now.UnixMilli()

	e.mutex.Lock()
	defer e.mutex.Unlock()

	next := e.prefs.Clone()

	next.SkipPatterns = pruneSkipPatterns(
		append(next.SkipPatterns, SkipEvent{TrackID: track.ID, Timestamp: nowMs}), nowMs)
	next.SkippedGenres[g]++

	recentSkips := countSkipsWithin(next.SkipPatterns, nowMs, recentSkipWindow)
	penalty := lightSkipPenalty
	if recentSkips > recentSkipThreshold {
		penalty = heavySkipPenalty
	}
	next.PreferredGenres[g] = max(0, next.PreferredGenres[g]-penalty)

	e.logger.Debug("Recorded skip",
		zap.String("trackID", track.ID),
		zap.String("genre", string(g)),
		zap.Int("recentSkips", recentSkips),
		zap.Float64("penalty", penalty),
		zap.Float64("preference", next.PreferredGenres[g]))

	e.metrics.RecordSkip(g)
	e.commit(next)
}

// RecordLike raises the preference of the track's genre and counts a like for its channel.
func (e *Engine) RecordLike(track core.Track, _ time.Time) {
	g := genre.Classify(track.Title, track.Channel)

	e.mutex.Lock()
	defer e.mutex.Unlock()

	next := e.prefs.Clone()
	next.PreferredGenres[g] += likeReward
	next.LikedArtists[track.Channel]++

	e.logger.Debug("Recorded like",
		zap.String("trackID", track.ID),
		zap.String("genre", string(g)),
		zap.String("artist", track.Channel),
		zap.Float64("preference", next.PreferredGenres[g]))

	e.metrics.RecordLike(g)
	e.commit(next)
}

// commit replaces the store and saves it. Save failures are logged; the in-memory store
// stays current either way. Callers hold the mutex.
func (e *Engine) commit(next Preferences) {
	e.prefs = next
	e.metrics.ObservePreferences(next)

	if err := e.storage.Save(next); err != nil {
		e.metrics.RecordSaveError()
		e.logger.Error("Failed to save preferences", zap.Error(err))
	}
}

// ShouldSkipTrack reports whether the track's genre has been skipped often enough, without
// enough renewed favour, to be left out of the adaptive playlist.
func (e *Engine) ShouldSkipTrack(track core.Track) bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.shouldSkip(track)
}

func (e *Engine) shouldSkip(track core.Track) bool {
	g := genre.Classify(track.Title, track.Channel)
	return e.prefs.SkippedGenres[g] > suppressSkipCount && e.prefs.PreferredGenres[g] < suppressPreference
}

// RecommendedGenre picks uniformly among the (up to) three best scoring genres with a
// positive preference. It returns false when no genre has one.
func (e *Engine) RecommendedGenre() (genre.Genre, bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	type genreScore struct {
		genre genre.Genre
		score float64
	}

	ranked := make([]genreScore, 0, len(e.prefs.PreferredGenres))
	for g, score := range e.prefs.PreferredGenres {
		if score > 0 {
			ranked = append(ranked, genreScore{genre: g, score: score})
		}
	}
	if len(ranked) == 0 {
		return "", false
	}

	// Map iteration order is random; break score ties by label so a seeded Rand is reproducible.
	slices.SortFunc(ranked, func(a, b genreScore) int {
		if a.score != b.score {
			if a.score > b.score {
				return -1
			}
			return 1
		}
		return strings.Compare(string(a.genre), string(b.genre))
	})

	pool := ranked[:min(recommendationPool, len(ranked))]
	picked := pool[e.rng.IntN(len(pool))].genre

	e.metrics.RecordRecommendation(picked)
	return picked, true
}

// Preferences returns a copy of the current preference store.
func (e *Engine) Preferences() Preferences {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	return e.prefs.Clone()
}

type nopRecorder struct{}

func (nopRecorder) RecordSkip(genre.Genre)           {}
func (nopRecorder) RecordLike(genre.Genre)           {}
func (nopRecorder) RecordRecommendation(genre.Genre) {}
func (nopRecorder) RecordSuppressed(int)             {}
func (nopRecorder) RecordSaveError()                 {}
func (nopRecorder) SetPlaylistSize(int)              {}
func (nopRecorder) ObservePreferences(Preferences)   {}

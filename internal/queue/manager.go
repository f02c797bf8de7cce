// Package queue keeps the play queue: it filters candidate batches against the play history,
// ranks them through the preference engine and hands out tracks one at a time.
package queue

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"autodj/internal/core"
	"autodj/internal/genre"
	"autodj/internal/preference"
	"autodj/internal/store"
	"autodj/pkg/fuzzy"
)

// Reasons a candidate is dropped before ranking.
const (
	ReasonInvalid       = "invalid"
	ReasonPlayed        = "played"
	ReasonDuplicateID   = "duplicate_id"
	ReasonNearDuplicate = "near_duplicate"
)

// HistoryStorage persists the play history as a list of track IDs, oldest first.
type HistoryStorage interface {
	Load(def []string) []string
	Save(trackIDs []string) error
}

// LikedStorage persists the liked songs collection in the order the tracks were liked.
type LikedStorage interface {
	Load(def []core.Track) []core.Track
	Save(tracks []core.Track) error
}

// Recorder receives queue activity.
type Recorder interface {
	SetQueueLength(length int)
	SetHistorySize(size int)
	RecordDuplicate(reason string)
}

// Manager owns the play queue and the play history.
type Manager struct {
	engine     *preference.Engine
	history    *store.DedupStore
	storage    HistoryStorage
	likedStore LikedStorage
	normalizer *fuzzy.Normalizer
	threshold  float64
	metrics    Recorder
	logger     *zap.Logger
	mutex      sync.Mutex
	queue      []core.Track
	liked      []core.Track
}

// NewManager creates a manager around engine and restores the play history from storage
// and the liked songs from liked.
// A DuplicateThreshold of zero or less disables near-duplicate detection.
func NewManager(engine *preference.Engine, storage HistoryStorage, liked LikedStorage,
	cfg core.QueueConfig, logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	history, err := store.NewDedupStore(cfg.HistorySize, cfg.BloomFalsePositiveRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create play history: %w", err)
	}
	history.Load(storage.Load([]string{}))

	likedTracks := liked.Load([]core.Track{})

	logger.Debug("Loaded play history",
		zap.Int("tracks", history.Size()),
		zap.Int("liked", len(likedTracks)))

	return &Manager{
		engine:     engine,
		history:    history,
		storage:    storage,
		likedStore: liked,
		normalizer: fuzzy.NewNormalizer(),
		threshold:  cfg.DuplicateThreshold,
		metrics:    nopRecorder{},
		logger:     logger,
		queue:      []core.Track{},
		liked:      likedTracks,
	}, nil
}

// SetMetrics sets the recorder that receives queue activity.
func (m *Manager) SetMetrics(recorder Recorder) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if recorder == nil {
		recorder = nopRecorder{}
	}
	m.metrics = recorder
	m.metrics.SetQueueLength(len(m.queue))
	m.metrics.SetHistorySize(m.history.Size())
}

// Refresh replaces the queue with the adaptive playlist built from candidates, after
// dropping recently played tracks and duplicates.
func (m *Manager) Refresh(candidates []core.Track) []core.Track {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	filtered := m.filterCandidates(candidates)
	m.queue = m.engine.UpdateAdaptivePlaylist(filtered)
	m.metrics.SetQueueLength(len(m.queue))

	m.logger.Info("Queue refreshed",
		zap.Int("candidates", len(candidates)),
		zap.Int("afterFilter", len(filtered)),
		zap.Int("queued", len(m.queue)))

	return slices.Clone(m.queue)
}

type normalizedTrack struct {
	title   string
	channel string
	length  time.Duration
}

func (m *Manager) filterCandidates(candidates []core.Track) []core.Track {
	kept := make([]core.Track, 0, len(candidates))
	keptNormalized := make([]normalizedTrack, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))

	for _, track := range candidates {
		reason := ""
		var normalized normalizedTrack

		switch _, duplicate := seen[track.ID]; {
		case track.ID == "":
			reason = ReasonInvalid
		case m.history.Has(track.ID):
			reason = ReasonPlayed
		case duplicate:
			reason = ReasonDuplicateID
		default:
			normalized = normalizedTrack{
				title:   m.normalizer.NormalizeTitle(track.Title),
				channel: m.normalizer.NormalizeChannel(track.Channel),
				length:  track.Length(),
			}
			if m.isNearDuplicate(normalized, keptNormalized) {
				reason = ReasonNearDuplicate
			}
		}

		if reason != "" {
			m.logger.Debug("Dropping candidate",
				zap.String("trackID", track.ID),
				zap.String("title", track.Title),
				zap.String("reason", reason))
			m.metrics.RecordDuplicate(reason)
			continue
		}

		seen[track.ID] = struct{}{}
		kept = append(kept, track)
		keptNormalized = append(keptNormalized, normalized)
	}

	return kept
}

func (m *Manager) isNearDuplicate(candidate normalizedTrack, kept []normalizedTrack) bool {
	if m.threshold <= 0 || candidate.title == "" {
		return false
	}
	for _, other := range kept {
		if other.channel != candidate.channel {
			continue
		}
		// Same title at a clearly different length is another recording
		if candidate.length > 0 && other.length > 0 &&
			m.normalizer.DurationTolerance(candidate.length, other.length) == 0 {
			continue
		}
		if m.normalizer.CalculateSimilarity(candidate.title, other.title) >= m.threshold {
			return true
		}
	}
	return false
}

// Next pops the head of the queue and records it as played.
func (m *Manager) Next() (core.Track, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if len(m.queue) == 0 {
		return core.Track{}, false
	}

	track := m.queue[0]
	m.queue = slices.Delete(m.queue, 0, 1)
	m.metrics.SetQueueLength(len(m.queue))
	m.markPlayed(track.ID)

	return track, true
}

// MarkPlayed records trackID as played and removes it from the queue.
func (m *Manager) MarkPlayed(trackID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.removeFromQueue(func(track core.Track) bool { return track.ID == trackID })
	m.markPlayed(trackID)
}

// Skip records a skip for track and marks it played. Queued tracks whose genre the
// skip suppressed are dropped.
func (m *Manager) Skip(track core.Track, now time.Time) {
	m.engine.RecordSkip(track, now)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.removeFromQueue(func(queued core.Track) bool {
		return queued.ID == track.ID || m.engine.ShouldSkipTrack(queued)
	})
	m.markPlayed(track.ID)
}

// Like records a like for track and adds it to the liked songs unless it is already there.
func (m *Manager) Like(track core.Track, now time.Time) {
	m.engine.RecordLike(track, now)

	if track.ID == "" {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if slices.ContainsFunc(m.liked, func(liked core.Track) bool { return liked.ID == track.ID }) {
		return
	}
	m.liked = append(m.liked, track)

	if err := m.likedStore.Save(m.liked); err != nil {
		m.logger.Warn("Failed to save liked songs",
			zap.String("trackID", track.ID),
			zap.Error(err))
	}
}

// Liked returns a copy of the liked songs, oldest like first.
func (m *Manager) Liked() []core.Track {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return slices.Clone(m.liked)
}

// Recommend returns the genre to pull more candidates for.
func (m *Manager) Recommend() (genre.Genre, bool) {
	return m.engine.RecommendedGenre()
}

// Queue returns a copy of the current queue.
func (m *Manager) Queue() []core.Track {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return slices.Clone(m.queue)
}

// History returns the recently played track IDs, oldest first.
func (m *Manager) History() []string {
	return m.history.Snapshot()
}

func (m *Manager) removeFromQueue(match func(core.Track) bool) {
	m.queue = slices.DeleteFunc(m.queue, match)
	m.metrics.SetQueueLength(len(m.queue))
}

func (m *Manager) markPlayed(trackID string) {
	if trackID == "" {
		return
	}

	m.history.Add(trackID)
	m.metrics.SetHistorySize(m.history.Size())

	if err := m.storage.Save(m.history.Snapshot()); err != nil {
		m.logger.Warn("Failed to save play history",
			zap.String("trackID", trackID),
			zap.Error(err))
	}
}

type nopRecorder struct{}

func (nopRecorder) SetQueueLength(int)     {}
func (nopRecorder) SetHistorySize(int)     {}
func (nopRecorder) RecordDuplicate(string) {}

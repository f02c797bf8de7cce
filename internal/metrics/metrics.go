// Package metrics exposes preference engine activity as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"autodj/internal/genre"
	"autodj/internal/preference"
)

type Metrics struct {
	registry *prometheus.Registry

	SkipsTotal           *prometheus.CounterVec
	LikesTotal           *prometheus.CounterVec
	RecommendationsTotal *prometheus.CounterVec
	SuppressedTotal      prometheus.Counter
	SaveErrorsTotal      prometheus.Counter
	PlaylistSize         prometheus.Gauge
	GenrePreference      *prometheus.GaugeVec
	GenreSkips           *prometheus.GaugeVec
	RecentSkipEvents     prometheus.Gauge
	LikedArtists         prometheus.Gauge
	QueueLength          prometheus.Gauge
	HistorySize          prometheus.Gauge
	DuplicatesTotal      *prometheus.CounterVec
}

// New creates the metrics on a registry of their own.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SkipsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodj_skips_total",
				Help: "Total number of skips recorded",
			},
			[]string{"genre"},
		),
		LikesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodj_likes_total",
				Help: "Total number of likes recorded",
			},
			[]string{"genre"},
		),
		RecommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodj_recommendations_total",
				Help: "Total number of genre recommendations handed out",
			},
			[]string{"genre"},
		),
		SuppressedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autodj_suppressed_candidates_total",
				Help: "Total number of candidates dropped because their genre is suppressed",
			},
		),
		SaveErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autodj_save_errors_total",
				Help: "Total number of failed preference store saves",
			},
		),
		PlaylistSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "autodj_adaptive_playlist_size",
				Help: "Number of tracks in the current adaptive playlist",
			},
		),
		GenrePreference: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "autodj_genre_preference",
				Help: "Current preference score per genre",
			},
			[]string{"genre"},
		),
		GenreSkips: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "autodj_genre_skips",
				Help: "Skips recorded per genre since the store was created",
			},
			[]string{"genre"},
		),
		RecentSkipEvents: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "autodj_skip_events_retained",
				Help: "Number of skip events retained in the preference store",
			},
		),
		LikedArtists: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "autodj_liked_artists",
				Help: "Number of distinct liked channels",
			},
		),
		QueueLength: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "autodj_queue_length",
				Help: "Number of tracks waiting in the play queue",
			},
		),
		HistorySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "autodj_history_size",
				Help: "Number of recently played tracks remembered",
			},
		),
		DuplicatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autodj_duplicate_candidates_total",
				Help: "Total number of candidates dropped before ranking",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.SkipsTotal,
		m.LikesTotal,
		m.RecommendationsTotal,
		m.SuppressedTotal,
		m.SaveErrorsTotal,
		m.PlaylistSize,
		m.GenrePreference,
		m.GenreSkips,
		m.RecentSkipEvents,
		m.LikedArtists,
		m.QueueLength,
		m.HistorySize,
		m.DuplicatesTotal,
	)

	return m
}

// WriteTextfile writes the metrics in the text format read by node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

func (m *Metrics) RecordSkip(g genre.Genre) {
	m.SkipsTotal.WithLabelValues(string(g)).Inc()
}

func (m *Metrics) RecordLike(g genre.Genre) {
	m.LikesTotal.WithLabelValues(string(g)).Inc()
}

func (m *Metrics) RecordRecommendation(g genre.Genre) {
	m.RecommendationsTotal.WithLabelValues(string(g)).Inc()
}

func (m *Metrics) RecordSuppressed(count int) {
	m.SuppressedTotal.Add(float64(count))
}

func (m *Metrics) RecordSaveError() {
	m.SaveErrorsTotal.Inc()
}

func (m *Metrics) SetPlaylistSize(size int) {
	m.PlaylistSize.Set(float64(size))
}

func (m *Metrics) SetQueueLength(length int) {
	m.QueueLength.Set(float64(length))
}

func (m *Metrics) SetHistorySize(size int) {
	m.HistorySize.Set(float64(size))
}

func (m *Metrics) RecordDuplicate(reason string) {
	m.DuplicatesTotal.WithLabelValues(reason).Inc()
}

// ObservePreferences sets the per-genre gauges from a preference store snapshot.
// Every taxonomy genre gets a series, zero when the store has no entry for it.
func (m *Metrics) ObservePreferences(prefs preference.Preferences) {
	for _, g := range genre.All() {
		m.GenrePreference.WithLabelValues(string(g)).Set(prefs.PreferredGenres[g])
		m.GenreSkips.WithLabelValues(string(g)).Set(float64(prefs.SkippedGenres[g]))
	}
	m.RecentSkipEvents.Set(float64(len(prefs.SkipPatterns)))
	m.LikedArtists.Set(float64(len(prefs.LikedArtists)))
}

package core

import (
	"time"
)

const (
	// DefaultPreferencesKey is the storage key of the preference store.
	DefaultPreferencesKey = "aiPreferences"
	// DefaultHistoryKey is the storage key of the recently played track IDs.
	DefaultHistoryKey = "playHistory"
	// DefaultLikedKey is the storage key of the liked songs collection.
	DefaultLikedKey = "likedSongs"
	// DefaultHistorySize is how many played tracks are remembered for deduplication.
	DefaultHistorySize = 500
	// DefaultBloomFalsePositiveRate is the false positive rate of the history bloom filter.
	DefaultBloomFalsePositiveRate = 0.001
	// DefaultDuplicateThreshold is the title similarity at which two candidates count as the same song.
	DefaultDuplicateThreshold = 0.9
	// DefaultYouTubeTimeoutSecs bounds a single oEmbed lookup.
	DefaultYouTubeTimeoutSecs = 10
	// DefaultResolveConcurrency is the number of parallel oEmbed lookups.
	DefaultResolveConcurrency = 4

	// StoreBackendSQLite keeps key-value pairs in a SQLite database file.
	StoreBackendSQLite = "sqlite"
	// StoreBackendBadger keeps key-value pairs in a Badger directory.
	StoreBackendBadger = "badger"
	// StoreBackendMemory keeps key-value pairs for the lifetime of the process only.
	StoreBackendMemory = "memory"
)

type Config struct {
	Store   StoreConfig
	Engine  EngineConfig
	Queue   QueueConfig
	YouTube YouTubeConfig
	Metrics MetricsConfig
	Log     LogConfig
}

type StoreConfig struct {
	Backend        string
	Path           string
	PreferencesKey string
	HistoryKey     string
	LikedKey       string
}

type EngineConfig struct {
	// Seed for the recommendation random source; 0 seeds from the clock.
	Seed uint64
}

type QueueConfig struct {
	HistorySize            int
	BloomFalsePositiveRate float64
	DuplicateThreshold     float64
}

type YouTubeConfig struct {
	TimeoutSecs        int
	ResolveConcurrency int
}

type MetricsConfig struct {
	TextfilePath string
}

type LogConfig struct {
	Level  string
	Format string
}

// RequestTimeout returns the oEmbed timeout as a duration.
func (c YouTubeConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:        StoreBackendSQLite,
			Path:           "./autodj.db",
			PreferencesKey: DefaultPreferencesKey,
			HistoryKey:     DefaultHistoryKey,
			LikedKey:       DefaultLikedKey,
		},
		Queue: QueueConfig{
			HistorySize:            DefaultHistorySize,
			BloomFalsePositiveRate: DefaultBloomFalsePositiveRate,
			DuplicateThreshold:     DefaultDuplicateThreshold,
		},
		YouTube: YouTubeConfig{
			TimeoutSecs:        DefaultYouTubeTimeoutSecs,
			ResolveConcurrency: DefaultResolveConcurrency,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

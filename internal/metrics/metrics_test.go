package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"autodj/internal/core"
	"autodj/internal/genre"
	"autodj/internal/preference"
	"autodj/internal/store"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordSkip(genre.Rock)
	m.RecordSkip(genre.Rock)
	m.RecordLike(genre.Jazz)
	m.RecordRecommendation(genre.Jazz)
	m.RecordSuppressed(3)
	m.RecordSuppressed(0)
	m.RecordSaveError()
	m.RecordDuplicate("played")

	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"skips rock", testutil.ToFloat64(m.SkipsTotal.WithLabelValues("rock")), 2},
		{"likes jazz", testutil.ToFloat64(m.LikesTotal.WithLabelValues("jazz")), 1},
		{"recommendations jazz", testutil.ToFloat64(m.RecommendationsTotal.WithLabelValues("jazz")), 1},
		{"suppressed", testutil.ToFloat64(m.SuppressedTotal), 3},
		{"save errors", testutil.ToFloat64(m.SaveErrorsTotal), 1},
		{"duplicates played", testutil.ToFloat64(m.DuplicatesTotal.WithLabelValues("played")), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.expected {
				t.Errorf("got %v, expected %v", tt.value, tt.expected)
			}
		})
	}
}

func TestMetrics_ObservePreferences(t *testing.T) {
	m := New()

	prefs := preference.NewPreferences()
	prefs.PreferredGenres[genre.Jazz] = 3.5
	prefs.SkippedGenres[genre.Rock] = 4
	prefs.SkipPatterns = append(prefs.SkipPatterns, preference.SkipEvent{TrackID: "a", Timestamp: 1})
	prefs.LikedArtists["Quartet"] = 1
	prefs.LikedArtists["The Band"] = 2

	m.ObservePreferences(prefs)

	if got := testutil.ToFloat64(m.GenrePreference.WithLabelValues("jazz")); got != 3.5 {
		t.Errorf("jazz preference = %v, expected 3.5", got)
	}
	if got := testutil.ToFloat64(m.GenreSkips.WithLabelValues("rock")); got != 4 {
		t.Errorf("rock skips = %v, expected 4", got)
	}
	if got := testutil.ToFloat64(m.RecentSkipEvents); got != 1 {
		t.Errorf("retained skip events = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(m.LikedArtists); got != 2 {
		t.Errorf("liked artists = %v, expected 2", got)
	}

	// One series per genre, including those without entries
	if got := testutil.CollectAndCount(m.GenrePreference); got != len(genre.All()) {
		t.Errorf("genre preference series = %d, expected %d", got, len(genre.All()))
	}
}

func TestMetrics_WiredIntoEngine(t *testing.T) {
	m := New()
	engine := preference.NewEngine(
		store.NewDocument[preference.Preferences](store.NewMemoryKV(), "aiPreferences", nil), nil, nil)
	engine.SetMetrics(m)

	rock := core.Track{ID: "r1", Title: "Rock Anthem", Channel: "The Band"}
	engine.RecordLike(rock, time.Now())
	engine.RecordSkip(rock, time.Now())
	engine.UpdateAdaptivePlaylist([]core.Track{rock})

	if got := testutil.ToFloat64(m.LikesTotal.WithLabelValues("rock")); got != 1 {
		t.Errorf("rock likes = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(m.SkipsTotal.WithLabelValues("rock")); got != 1 {
		t.Errorf("rock skips = %v, expected 1", got)
	}
	if got := testutil.ToFloat64(m.GenrePreference.WithLabelValues("rock")); got != 1.5 {
		t.Errorf("rock preference = %v, expected 1.5", got)
	}
	if got := testutil.ToFloat64(m.PlaylistSize); got != 1 {
		t.Errorf("playlist size = %v, expected 1", got)
	}
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.RecordSkip(genre.Pop)
	m.SetQueueLength(7)
	m.SetHistorySize(3)

	path := filepath.Join(t.TempDir(), "autodj.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		`autodj_skips_total{genre="pop"} 1`,
		`autodj_queue_length 7`,
		`autodj_history_size 3`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Textfile missing %q:\n%s", want, content)
		}
	}
}

func TestMetrics_WriteTextfileBadPath(t *testing.T) {
	m := New()
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "autodj.prom")); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}

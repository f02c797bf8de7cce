package store

import (
	"fmt"
	"testing"
)

func newTestDedupStore(t testing.TB, maxTracks int) *DedupStore {
	t.Helper()
	store, err := NewDedupStore(maxTracks, 0.001)
	if err != nil {
		t.Fatalf("NewDedupStore: %v", err)
	}
	return store
}

func TestNewDedupStore_InvalidArguments(t *testing.T) {
	tests := []struct {
		name      string
		maxTracks int
		rate      float64
	}{
		{name: "Zero capacity", maxTracks: 0, rate: 0.001},
		{name: "Negative capacity", maxTracks: -1, rate: 0.001},
		{name: "Zero rate", maxTracks: 10, rate: 0},
		{name: "Rate of one", maxTracks: 10, rate: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDedupStore(tt.maxTracks, tt.rate); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestDedupStore_Basic(t *testing.T) {
	store := newTestDedupStore(t, 100)

	if store.Has("track1") {
		t.Error("Empty store should not have any tracks")
	}

	if store.Size() != 0 {
		t.Errorf("Empty store size should be 0, got %d", store.Size())
	}

	store.Add("track1")
	if !store.Has("track1") {
		t.Error("Store should have track1 after adding")
	}

	// Adding the same track again only refreshes its recency
	store.Add("track1")
	if store.Size() != 1 {
		t.Errorf("Store size should still be 1 after adding duplicate, got %d", store.Size())
	}

	store.Add("")
	if store.Size() != 1 {
		t.Errorf("Empty IDs should be ignored, got size %d", store.Size())
	}

	store.Add("track2")
	store.Add("track3")
	if store.Size() != 3 {
		t.Errorf("Store size should be 3 after adding three tracks, got %d", store.Size())
	}
}

func TestDedupStore_LoadAndSnapshot(t *testing.T) {
	store := newTestDedupStore(t, 100)

	store.Load([]string{"track1", "", "track2", "track3"})

	if store.Size() != 3 {
		t.Errorf("Store size should be 3 after loading (ignoring empty strings), got %d", store.Size())
	}

	snapshot := store.Snapshot()
	expected := []string{"track1", "track2", "track3"}
	if len(snapshot) != len(expected) {
		t.Fatalf("Snapshot() = %v, expected %v", snapshot, expected)
	}
	for i := range expected {
		if snapshot[i] != expected[i] {
			t.Errorf("Snapshot()[%d] = %s, expected %s", i, snapshot[i], expected[i])
		}
	}

	// Loading replaces the previous content
	store.Load([]string{"track4"})
	if store.Has("track1") {
		t.Error("Store should not have old track after reload")
	}
	if !store.Has("track4") {
		t.Error("Store should have reloaded track4")
	}

	// A snapshot loaded into a fresh store restores the same order
	other := newTestDedupStore(t, 100)
	store.Add("track5")
	other.Load(store.Snapshot())
	if got := other.Snapshot(); len(got) != 2 || got[0] != "track4" || got[1] != "track5" {
		t.Errorf("Restored snapshot = %v, expected [track4 track5]", got)
	}
}

func TestDedupStore_LoadEmptyForgetsEverything(t *testing.T) {
	store := newTestDedupStore(t, 100)

	tracks := []string{"track1", "track2", "track3"}
	for _, track := range tracks {
		store.Add(track)
	}

	store.Load(nil)

	if store.Size() != 0 {
		t.Errorf("Store size should be 0 after loading nothing, got %d", store.Size())
	}

	for _, track := range tracks {
		if store.Has(track) {
			t.Errorf("Store should not have track %s after loading nothing", track)
		}
	}
}

func TestDedupStore_MaxCapacity(t *testing.T) {
	maxTracks := 5
	store := newTestDedupStore(t, maxTracks)

	for i := 0; i < maxTracks+3; i++ {
		store.Add(fmt.Sprintf("track%d", i))
	}

	if store.Size() != maxTracks {
		t.Errorf("Store size should be %d, got %d", maxTracks, store.Size())
	}

	for _, track := range []string{"track0", "track1", "track2"} {
		if store.Has(track) {
			t.Errorf("Store should have evicted oldest track %s", track)
		}
	}

	for _, track := range []string{"track3", "track4", "track5", "track6", "track7"} {
		if !store.Has(track) {
			t.Errorf("Store should have recent track %s", track)
		}
	}
}

func TestDedupStore_BloomFilterEffectiveness(t *testing.T) {
	store := newTestDedupStore(t, 1000)

	numTracks := 500
	for i := 0; i < numTracks; i++ {
		store.Add(fmt.Sprintf("track_%d", i))
	}

	for i := 0; i < numTracks; i++ {
		trackID := fmt.Sprintf("track_%d", i)
		if !store.Has(trackID) {
			t.Errorf("Store should have track %s", trackID)
		}
	}

	// The LRU backs every bloom hit, so unknown IDs are never reported
	for i := 0; i < 1000; i++ {
		trackID := fmt.Sprintf("nonexistent_%d", i)
		if store.Has(trackID) {
			t.Errorf("Store should not have %s", trackID)
		}
	}
}

func BenchmarkDedupStore_Add(b *testing.B) {
	store := newTestDedupStore(b, 10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Add(fmt.Sprintf("track_%d", i))
	}
}

func BenchmarkDedupStore_Has(b *testing.B) {
	store := newTestDedupStore(b, 10000)

	for i := 0; i < 1000; i++ {
		store.Add(fmt.Sprintf("track_%d", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Has(fmt.Sprintf("track_%d", i%1000))
	}
}

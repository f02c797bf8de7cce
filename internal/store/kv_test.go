package store

import (
	"errors"
	"path/filepath"
	"testing"
)

func openBackends(t *testing.T) map[string]KV {
	t.Helper()

	sqliteKV, err := NewSQLiteKV(filepath.Join(t.TempDir(), "autodj.db"))
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}

	badgerKV, err := NewBadgerKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadgerKV: %v", err)
	}

	backends := map[string]KV{
		"memory": NewMemoryKV(),
		"sqlite": sqliteKV,
		"badger": badgerKV,
	}
	t.Cleanup(func() {
		for _, kv := range backends {
			_ = kv.Close()
		}
	})
	return backends
}

func TestKV_GetSet(t *testing.T) {
	for name, kv := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			if _, exists, err := kv.Get("missing"); err != nil || exists {
				t.Errorf("Get(missing) = exists %v, err %v; expected not found", exists, err)
			}

			if err := kv.Set("key", []byte(`{"a":1}`)); err != nil {
				t.Fatalf("Set: %v", err)
			}

			value, exists, err := kv.Get("key")
			if err != nil || !exists {
				t.Fatalf("Get(key) = exists %v, err %v", exists, err)
			}
			if string(value) != `{"a":1}` {
				t.Errorf("Get(key) = %s, expected {\"a\":1}", value)
			}

			if err := kv.Set("key", []byte(`{"a":2}`)); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			value, _, _ = kv.Get("key")
			if string(value) != `{"a":2}` {
				t.Errorf("Get(key) after overwrite = %s, expected {\"a\":2}", value)
			}
		})
	}
}

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autodj.db")

	kv, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	if err := kv.Set("aiPreferences", []byte(`{}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLiteKV(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	value, exists, err := reopened.Get("aiPreferences")
	if err != nil || !exists || string(value) != `{}` {
		t.Errorf("Get after reopen = %q, %v, %v", value, exists, err)
	}
}

func TestBadgerKV_InMemory(t *testing.T) {
	kv, err := NewBadgerKV("")
	if err != nil {
		t.Fatalf("NewBadgerKV: %v", err)
	}
	defer kv.Close()

	if err := kv.Set("k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if value, exists, _ := kv.Get("k"); !exists || string(value) != "v" {
		t.Errorf("Get(k) = %q, %v", value, exists)
	}
}

func TestMemoryKV_Closed(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Close()

	if err := kv.Set("k", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Set after close = %v, expected ErrClosed", err)
	}
	if _, _, err := kv.Get("k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after close = %v, expected ErrClosed", err)
	}
}

func TestMemoryKV_CopiesValues(t *testing.T) {
	kv := NewMemoryKV()
	value := []byte("abc")
	_ = kv.Set("k", value)
	value[0] = 'x'

	stored, _, _ := kv.Get("k")
	if string(stored) != "abc" {
		t.Errorf("Stored value changed with caller slice: %s", stored)
	}
}

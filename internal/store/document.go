package store

import (
	"fmt"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Document is a JSON value stored under a single key of a KV.
type Document[T any] struct {
	kv     KV
	key    string
	logger *zap.Logger
}

// NewDocument binds a document to key. A nil logger discards load warnings.
func NewDocument[T any](kv KV, key string, logger *zap.Logger) *Document[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Document[T]{
		kv:     kv,
		key:    key,
		logger: logger,
	}
}

// Key returns the storage key of the document.
func (d *Document[T]) Key() string {
	return d.key
}

// Load returns the stored value, or def when the key is missing, unreadable or does not
// decode into T. It never fails.
func (d *Document[T]) Load(def T) T {
	data, exists, err := d.kv.Get(d.key)
	if err != nil {
		d.logger.Warn("Failed to read document, using default",
			zap.String("key", d.key),
			zap.Error(err))
		return def
	}
	if !exists {
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		d.logger.Warn("Corrupt document, using default",
			zap.String("key", d.key),
			zap.Error(err))
		return def
	}

	return value
}

// Save encodes value as JSON and replaces the stored document.
func (d *Document[T]) Save(value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", d.key, err)
	}
	return d.kv.Set(d.key, data)
}

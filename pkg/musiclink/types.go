// Package musiclink resolves video links into track references that can be ranked as playlist candidates.
package musiclink

import (
	"context"
)

// TrackInfo holds the metadata extracted for a single video link.
type TrackInfo struct {
	ID        string // Provider video ID.
	Title     string // Video title as published.
	Channel   string // Uploading channel name.
	Thumbnail string // Thumbnail URL (if available).
	URL       string // Canonical watch URL.
}

// Resolver defines the interface for resolving links to track information.
type Resolver interface {
	// Resolve extracts track information from a provider URL.
	Resolve(ctx context.Context, url string) (*TrackInfo, error)

	// CanResolve checks if this resolver can handle the given URL.
	CanResolve(url string) bool
}

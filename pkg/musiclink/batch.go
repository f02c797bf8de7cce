package musiclink

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ResolveAll resolves a batch of links with at most limit requests in flight.
// Successful results keep the input order; failed links are left out and
// reported together in the returned error.
func ResolveAll(ctx context.Context, resolver Resolver, urls []string, limit int) ([]TrackInfo, error) {
	results := make([]*TrackInfo, len(urls))
	errs := make([]error, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, link := range urls {
		g.Go(func() error {
			info, err := resolver.Resolve(ctx, link)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", link, err)
				return nil
			}
			results[i] = info
			return nil
		})
	}
	_ = g.Wait()

	tracks := make([]TrackInfo, 0, len(urls))
	for _, info := range results {
		if info != nil {
			tracks = append(tracks, *info)
		}
	}

	return tracks, errors.Join(errs...)
}

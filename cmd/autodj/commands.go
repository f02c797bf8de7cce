package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"autodj/internal/core"
	"autodj/internal/genre"
	"autodj/internal/metrics"
	"autodj/internal/preference"
	"autodj/internal/queue"
	"autodj/internal/store"
	"autodj/pkg/musiclink"
	"autodj/pkg/text"
)

type services struct {
	kv      store.KV
	engine  *preference.Engine
	queue   *queue.Manager
	metrics *metrics.Metrics
}

func initializeServices(cfg *core.Config) (*services, error) {
	kv, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	prefsDoc := store.NewDocument[preference.Preferences](kv, cfg.Store.PreferencesKey, logger.Named("store"))
	engine := preference.NewEngine(prefsDoc, preference.NewRand(cfg.Engine.Seed), logger.Named("engine"))
	engine.SetMetrics(m)

	historyDoc := store.NewDocument[[]string](kv, cfg.Store.HistoryKey, logger.Named("store"))
	likedDoc := store.NewDocument[[]core.Track](kv, cfg.Store.LikedKey, logger.Named("store"))
	manager, err := queue.NewManager(engine, historyDoc, likedDoc, cfg.Queue, logger.Named("queue"))
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	manager.SetMetrics(m)

	return &services{
		kv:      kv,
		engine:  engine,
		queue:   manager,
		metrics: m,
	}, nil
}

func openStore(cfg core.StoreConfig) (store.KV, error) {
	switch cfg.Backend {
	case core.StoreBackendSQLite:
		kv, err := store.NewSQLiteKV(cfg.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case core.StoreBackendBadger:
		kv, err := store.NewBadgerKV(cfg.Path)
		if err != nil {
			return nil, err
		}
		return kv, nil
	case core.StoreBackendMemory:
		return store.NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Backend)
	}
}

// close writes the metrics textfile, if configured, and closes the store.
func (s *services) close(cfg *core.Config) error {
	var errs []error

	if cfg.Metrics.TextfilePath != "" {
		if err := s.metrics.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.kv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close store: %w", err))
	}

	return errors.Join(errs...)
}

// withServices runs fn against freshly opened services and closes them afterwards.
func withServices(fn func(svcs *services) error) error {
	defer func() {
		_ = logger.Sync()
	}()

	svcs, err := initializeServices(config)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	runErr := fn(svcs)
	if closeErr := svcs.close(config); closeErr != nil {
		logger.Error("Failed to shut down cleanly", zap.Error(closeErr))
		if runErr == nil {
			runErr = closeErr
		}
	}
	return runErr
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func addTrackFlags(cmd *cobra.Command) {
	cmd.Flags().String("id", "", "Track ID")
	cmd.Flags().String("title", "", "Track title")
	cmd.Flags().String("channel", "", "Channel name")
}

func trackFromFlags(cmd *cobra.Command) (core.Track, error) {
	id, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")
	channel, _ := cmd.Flags().GetString("channel")

	if id == "" {
		return core.Track{}, errors.New("--id is required")
	}
	return core.Track{ID: id, Title: title, Channel: channel}, nil
}

type classification struct {
	Title   string      `json:"title"`
	Channel string      `json:"channelTitle"`
	Genre   genre.Genre `json:"genre"`
}

func newClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the genre of a title and channel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			title, _ := cmd.Flags().GetString("title")
			channel, _ := cmd.Flags().GetString("channel")

			return writeJSON(cmd.OutOrStdout(), classification{
				Title:   title,
				Channel: channel,
				Genre:   genre.Classify(title, channel),
			})
		},
	}
	cmd.Flags().String("title", "", "Track title")
	cmd.Flags().String("channel", "", "Channel name")
	return cmd
}

func newSkipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skip",
		Short: "Record that a track was skipped",
		RunE: func(cmd *cobra.Command, _ []string) error {
			track, err := trackFromFlags(cmd)
			if err != nil {
				return err
			}
			return withServices(func(svcs *services) error {
				svcs.queue.Skip(track, time.Now())
				logger.Info("Recorded skip", zap.String("trackID", track.ID))
				return writeJSON(cmd.OutOrStdout(), svcs.engine.Preferences())
			})
		},
	}
	addTrackFlags(cmd)
	return cmd
}

func newLikeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "like",
		Short: "Record that a track was liked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			track, err := trackFromFlags(cmd)
			if err != nil {
				return err
			}
			return withServices(func(svcs *services) error {
				svcs.queue.Like(track, time.Now())
				logger.Info("Recorded like", zap.String("trackID", track.ID))
				return writeJSON(cmd.OutOrStdout(), svcs.engine.Preferences())
			})
		},
	}
	addTrackFlags(cmd)
	return cmd
}

func newLikedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "liked",
		Short: "Print the liked songs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(func(svcs *services) error {
				return writeJSON(cmd.OutOrStdout(), svcs.queue.Liked())
			})
		},
	}
}

type historyOutput struct {
	History []string `json:"history"`
}

func newPlayedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "played",
		Short: "Record that a track was played so it is not suggested again soon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				return errors.New("--id is required")
			}
			return withServices(func(svcs *services) error {
				svcs.queue.MarkPlayed(id)
				return writeJSON(cmd.OutOrStdout(), historyOutput{History: svcs.queue.History()})
			})
		},
	}
	cmd.Flags().String("id", "", "Track ID")
	return cmd
}

type recommendation struct {
	Genre genre.Genre `json:"genre,omitempty"`
	Found bool        `json:"found"`
}

func newRecommendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Print a genre to search for next",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(func(svcs *services) error {
				g, ok := svcs.queue.Recommend()
				return writeJSON(cmd.OutOrStdout(), recommendation{Genre: g, Found: ok})
			})
		},
	}
}

func newPrefsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefs",
		Short: "Print the stored preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(func(svcs *services) error {
				return writeJSON(cmd.OutOrStdout(), svcs.engine.Preferences())
			})
		},
	}
}

type rankedTrack struct {
	core.Track
	Genre genre.Genre `json:"genre"`
	Score float64     `json:"score"`
}

func newRankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank candidate tracks into the adaptive playlist",
		Long: `rank reads candidate tracks from a JSON file (a list of objects with id, title,
channelTitle and an optional ISO-8601 duration), resolves YouTube links and/or takes the
liked songs, then prints the adaptive playlist.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")
			urls, _ := cmd.Flags().GetStringSlice("url")
			linksFile, _ := cmd.Flags().GetString("links-file")
			liked, _ := cmd.Flags().GetBool("liked")
			if file == "" && len(urls) == 0 && linksFile == "" && !liked {
				return errors.New("at least one of --file, --url, --links-file or --liked is required")
			}

			resolver := musiclink.NewYouTubeResolver(config.YouTube.RequestTimeout())
			if linksFile != "" {
				links, err := extractLinks(linksFile, resolver)
				if err != nil {
					return err
				}
				urls = append(urls, links...)
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			candidates, err := loadCandidates(ctx, resolver, file, urls)
			if err != nil {
				return err
			}

			return withServices(func(svcs *services) error {
				if liked {
					candidates = append(candidates, svcs.queue.Liked()...)
				}
				playlist := svcs.queue.Refresh(candidates)

				ranked := make([]rankedTrack, 0, len(playlist))
				for _, track := range playlist {
					ranked = append(ranked, rankedTrack{
						Track: track,
						Genre: genre.Classify(track.Title, track.Channel),
						Score: svcs.engine.Score(track),
					})
				}
				return writeJSON(cmd.OutOrStdout(), ranked)
			})
		},
	}
	cmd.Flags().String("file", "", "JSON file with candidate tracks")
	cmd.Flags().StringSlice("url", nil, "YouTube link to resolve into a candidate (repeatable)")
	cmd.Flags().String("links-file", "", "Text file (e.g. an exported chat) to collect YouTube links from")
	cmd.Flags().Bool("liked", false, "Add the liked songs to the candidates")
	return cmd
}

// extractLinks collects the links in a free-form text file that resolver can handle.
func extractLinks(path string, resolver musiclink.Resolver) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read links: %w", err)
	}

	var links []string
	for _, link := range text.NewParser().ExtractLinks(string(data)) {
		if resolver.CanResolve(link) {
			links = append(links, link)
		}
	}

	logger.Debug("Collected links", zap.String("file", path), zap.Int("count", len(links)))
	return links, nil
}

func loadCandidates(ctx context.Context, resolver musiclink.Resolver, file string, urls []string) ([]core.Track, error) {
	var candidates []core.Track

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read candidates: %w", err)
		}
		if err := json.Unmarshal(data, &candidates); err != nil {
			return nil, fmt.Errorf("failed to parse candidates: %w", err)
		}
	}

	if len(urls) > 0 {
		resolved, err := musiclink.ResolveAll(ctx, resolver, urls, config.YouTube.ResolveConcurrency)
		if err != nil {
			logger.Warn("Some links could not be resolved", zap.Error(err))
		}
		for _, info := range resolved {
			candidates = append(candidates, trackFromInfo(info))
		}
	}

	logger.Debug("Loaded candidates", zap.Int("count", len(candidates)))
	return candidates, nil
}

func trackFromInfo(info musiclink.TrackInfo) core.Track {
	return core.Track{
		ID:        info.ID,
		Title:     info.Title,
		Channel:   info.Channel,
		Thumbnail: info.Thumbnail,
		URL:       info.URL,
	}
}

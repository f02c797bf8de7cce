package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// YouTubeOEmbedURL is the YouTube oEmbed API endpoint.
	YouTubeOEmbedURL = "https://www.youtube.com/oembed"
	// YouTubeRequestTimeout is the default timeout for YouTube API requests.
	YouTubeRequestTimeout = 10 * time.Second
	// youtubeWatchURL is the canonical watch URL format.
	youtubeWatchURL = "https://www.youtube.com/watch?v=%s"
)

// ErrNotYouTube is returned for links outside the YouTube domains.
var ErrNotYouTube = errors.New("not a YouTube URL")

// YouTubeOEmbedResponse represents the response from YouTube's oEmbed API.
type YouTubeOEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// YouTubeResolver resolves YouTube and YouTube Music links to track information.
type YouTubeResolver struct {
	client   *http.Client
	endpoint string
}

// NewYouTubeResolver creates a new YouTube link resolver. A non-positive timeout
// selects YouTubeRequestTimeout.
func NewYouTubeResolver(timeout time.Duration) *YouTubeResolver {
	if timeout <= 0 {
		timeout = YouTubeRequestTimeout
	}
	return &YouTubeResolver{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: YouTubeOEmbedURL,
	}
}

// CanResolve checks if the URL is a YouTube or YouTube Music link.
func (r *YouTubeResolver) CanResolve(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com", "youtu.be":
		return true
	}
	return false
}

// Resolve extracts track information from a YouTube URL using the oEmbed API.
func (r *YouTubeResolver) Resolve(ctx context.Context, rawURL string) (*TrackInfo, error) {
	if !r.CanResolve(rawURL) {
		return nil, ErrNotYouTube
	}

	videoID, err := r.extractVideoID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to extract video ID: %w", err)
	}

	videoURL := fmt.Sprintf(youtubeWatchURL, videoID)

	oembedResp, err := r.fetchOEmbed(ctx, videoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oEmbed data: %w", err)
	}

	return &TrackInfo{
		ID:        videoID,
		Title:     strings.TrimSpace(oembedResp.Title),
		Channel:   strings.TrimSpace(oembedResp.AuthorName),
		Thumbnail: oembedResp.ThumbnailURL,
		URL:       videoURL,
	}, nil
}

// extractVideoID extracts the YouTube video ID from various URL formats.
func (r *YouTubeResolver) extractVideoID(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	hostname := strings.ToLower(u.Hostname())

	// Short links carry the ID in the path.
	if hostname == "youtu.be" {
		path := strings.Trim(u.Path, "/")
		if path == "" {
			return "", errors.New("no video ID in youtu.be URL")
		}
		return path, nil
	}

	if strings.HasPrefix(u.Path, "/shorts/") {
		if id := strings.Trim(strings.TrimPrefix(u.Path, "/shorts/"), "/"); id != "" {
			return id, nil
		}
	}

	videoID := u.Query().Get("v")
	if videoID == "" {
		return "", errors.New("no video ID in YouTube URL")
	}
	return videoID, nil
}

// fetchOEmbed fetches metadata from YouTube's oEmbed API.
func (r *YouTubeResolver) fetchOEmbed(ctx context.Context, videoURL string) (*YouTubeOEmbedResponse, error) {
	reqURL := fmt.Sprintf("%s?url=%s&format=json", r.endpoint, url.QueryEscape(videoURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oEmbed API returned status %d", resp.StatusCode)
	}

	var oembedResp YouTubeOEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&oembedResp); err != nil {
		return nil, fmt.Errorf("failed to decode oEmbed response: %w", err)
	}

	return &oembedResp, nil
}

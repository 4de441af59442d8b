package jikan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/kitsouko/aniarr/internal/config"
	"github.com/sirupsen/logrus"
)

// Client handles communication with the anime catalog API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new catalog API client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.CatalogURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// AnimeMetadata is the provider's view of one anime. Zero-valued fields mean
// the provider did not return them; the refresh controller never clears stored
// data for fields absent here.
type AnimeMetadata struct {
	ProviderID  int
	Title       string
	AltTitles   []string
	Description string
	PosterURL   string
	TrailerURL  string

	Genres  []string
	Studios []string
	Themes  []string

	Score        float64
	AiringStatus string // RELEASING, FINISHED, NOT_YET_RELEASED, CANCELLED

	Episodes          []EpisodeMetadata
	NextAiringEpisode *AiringProjection
	Characters        []CharacterMetadata
}

// EpisodeMetadata is one episode as reported by the provider
type EpisodeMetadata struct {
	Number          int
	Title           string
	AirDate         *time.Time
	DurationMinutes int
	ThumbnailURL    string
	PreviewURL      string
}

// AiringProjection is the provider's next-episode projection
type AiringProjection struct {
	Episode  int
	AiringAt time.Time
}

// CharacterMetadata is one character as reported by the provider
type CharacterMetadata struct {
	Name        string
	ImageURL    string
	Role        string // MAIN, SUPPORTING, BACKGROUND
	Description string
}

// doRequest performs an HTTP GET against the catalog API
func (c *Client) doRequest(ctx context.Context, path string, query url.Values, result interface{}) error {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	c.logger.WithField("url", fullURL).Debug("Making catalog API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

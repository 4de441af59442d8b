package jikan

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kitsouko/aniarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrNoMatch is returned when no search candidate is close enough to the
// requested title.
var ErrNoMatch = errors.New("no matching anime found")

// Wire types for the provider's JSON envelope

type searchResponse struct {
	Data []animeData `json:"data"`
}

type animeData struct {
	MalID    int     `json:"mal_id"`
	Title    string  `json:"title"`
	TitleEN  string  `json:"title_english"`
	TitleJP  string  `json:"title_japanese"`
	Synopsis string  `json:"synopsis"`
	Score    float64 `json:"score"`
	Status   string  `json:"status"`
	Airing   bool    `json:"airing"`
	Images   struct {
		JPG struct {
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Trailer struct {
		URL string `json:"url"`
	} `json:"trailer"`
	Genres  []namedEntity `json:"genres"`
	Studios []namedEntity `json:"studios"`
	Themes  []namedEntity `json:"themes"`
}

type namedEntity struct {
	Name string `json:"name"`
}

type episodesResponse struct {
	Data []struct {
		MalID    int     `json:"mal_id"`
		Title    string  `json:"title"`
		Aired    *string `json:"aired"`
		Duration int     `json:"duration"`
		URL      string  `json:"url"`
	} `json:"data"`
}

type charactersResponse struct {
	Data []struct {
		Character struct {
			Name   string `json:"name"`
			About  string `json:"about"`
			Images struct {
				JPG struct {
					ImageURL string `json:"image_url"`
				} `json:"jpg"`
			} `json:"images"`
		} `json:"character"`
		Role string `json:"role"`
	} `json:"data"`
}

// FetchByTitle searches the catalog for a title, picks the closest candidate
// and assembles its full metadata (episodes and characters included).
func (c *Client) FetchByTitle(ctx context.Context, title string) (*AnimeMetadata, error) {
	query := url.Values{}
	query.Set("q", title)
	query.Set("limit", "10")

	var search searchResponse
	if err := c.doRequest(ctx, "/anime", query, &search); err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	if len(search.Data) == 0 {
		return nil, ErrNoMatch
	}

	best, err := bestMatch(title, search.Data)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"query":   title,
		"matched": best.Title,
		"id":      best.MalID,
	}).Debug("Catalog title matched")

	meta := &AnimeMetadata{
		ProviderID:   best.MalID,
		Title:        best.Title,
		Description:  best.Synopsis,
		PosterURL:    best.Images.JPG.LargeImageURL,
		TrailerURL:   best.Trailer.URL,
		Score:        best.Score,
		AiringStatus: mapAiringStatus(best.Status),
		Genres:       names(best.Genres),
		Studios:      names(best.Studios),
		Themes:       names(best.Themes),
	}
	if best.TitleEN != "" {
		meta.AltTitles = append(meta.AltTitles, best.TitleEN)
	}
	if best.TitleJP != "" {
		meta.AltTitles = append(meta.AltTitles, best.TitleJP)
	}

	// Episodes and characters come from dedicated endpoints; a failure there
	// degrades to partial metadata rather than failing the whole fetch.
	episodes, err := c.fetchEpisodes(ctx, best.MalID)
	if err != nil {
		c.logger.WithError(err).WithField("id", best.MalID).Warn("Failed to fetch episode list")
	} else {
		meta.Episodes = episodes
	}

	characters, err := c.fetchCharacters(ctx, best.MalID)
	if err != nil {
		c.logger.WithError(err).WithField("id", best.MalID).Warn("Failed to fetch character list")
	} else {
		meta.Characters = characters
	}

	return meta, nil
}

func (c *Client) fetchEpisodes(ctx context.Context, id int) ([]EpisodeMetadata, error) {
	var resp episodesResponse
	if err := c.doRequest(ctx, "/anime/"+strconv.Itoa(id)+"/episodes", nil, &resp); err != nil {
		return nil, err
	}

	episodes := make([]EpisodeMetadata, 0, len(resp.Data))
	for i, ep := range resp.Data {
		episode := EpisodeMetadata{
			Number:          i + 1,
			Title:           ep.Title,
			DurationMinutes: ep.Duration,
			PreviewURL:      ep.URL,
		}
		if ep.Aired != nil {
			if aired, err := time.Parse(time.RFC3339, *ep.Aired); err == nil {
				episode.AirDate = &aired
			}
		}
		episodes = append(episodes, episode)
	}
	return episodes, nil
}

func (c *Client) fetchCharacters(ctx context.Context, id int) ([]CharacterMetadata, error) {
	var resp charactersResponse
	if err := c.doRequest(ctx, "/anime/"+strconv.Itoa(id)+"/characters", nil, &resp); err != nil {
		return nil, err
	}

	characters := make([]CharacterMetadata, 0, len(resp.Data))
	for _, entry := range resp.Data {
		characters = append(characters, CharacterMetadata{
			Name:        entry.Character.Name,
			ImageURL:    entry.Character.Images.JPG.ImageURL,
			Role:        mapRole(entry.Role),
			Description: entry.Character.About,
		})
	}
	return characters, nil
}

func names(entities []namedEntity) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, e.Name)
	}
	return out
}

func mapAiringStatus(status string) string {
	switch status {
	case "Currently Airing":
		return "RELEASING"
	case "Finished Airing":
		return "FINISHED"
	case "Not yet aired":
		return "NOT_YET_RELEASED"
	case "Discontinued":
		return "CANCELLED"
	default:
		return ""
	}
}

func mapRole(role string) string {
	switch role {
	case "Main":
		return "MAIN"
	case "Supporting":
		return "SUPPORTING"
	default:
		return "BACKGROUND"
	}
}

// maxMatchDistance bounds how far a candidate title may drift from the query
// before it is rejected instead of matched.
func maxMatchDistance(title string) int {
	limit := len(utils.NormalizeTitle(title)) / 4
	if limit < 3 {
		limit = 3
	}
	return limit
}

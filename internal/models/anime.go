package models

import "time"

// Anime represents a catalog entry with its embedded episode and character lists
type Anime struct {
	ID        uint64 `boltholdKey:"ID"`
	Title     string `boltholdIndex:"Title"`
	AltTitles []string

	Description string
	PosterURL   string
	TrailerURL  string

	Genres  []string
	Studios []string
	Themes  []string

	// ExternalRating comes from the metadata provider; AverageUserRating and
	// ReviewCount are derived from the reviews table and recomputed on every
	// review mutation, never written from anywhere else.
	ExternalRating    float64
	AverageUserRating float64
	ReviewCount       int

	AiringStatus      AiringStatus `boltholdIndex:"AiringStatus"`
	NextAiringEpisode *AiringProjection

	Episodes   []Episode
	Characters []Character

	// LastFetchedAt is when external metadata was last merged in.
	LastFetchedAt *time.Time

	SchemaVersion int `boltholdIndex:"SchemaVersion"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Episode represents a single streaming episode of an anime
type Episode struct {
	Number          int
	Title           string
	AirDate         *time.Time
	DurationMinutes int
	ThumbnailURL    string
	PreviewURL      string
}

// AiringProjection is the provider's projection of the next episode to air
type AiringProjection struct {
	Episode  int
	AiringAt time.Time
}

// Character is embedded in Anime, never stored on its own. Base fields come
// from the metadata provider; the enrichment envelope and content fields are
// written only by the enrichment requestor.
type Character struct {
	Name     string
	ImageURL string
	Role     CharacterRole

	// Base biographical fields from the catalog
	Description string
	Age         string
	Gender      string

	// Legacy pre-v2 flag, cleared by the schema migration.
	IsAIEnriched *bool `json:",omitempty"`

	// Enrichment envelope
	EnrichmentStatus   EnrichmentStatus
	EnrichmentAttempts int
	LastAttemptAt      *time.Time
	LastErrorMessage   string
	EnrichedAt         *time.Time

	// Enriched content, populated only on success
	Personality   string
	Backstory     string
	CharacterArcs string
	Relationships []string
	Abilities     []string
	Trivia        []string
}

// Enriched reports whether the character carries any enriched content
func (c *Character) Enriched() bool {
	return c.Personality != "" || c.Backstory != "" || c.CharacterArcs != "" ||
		len(c.Relationships) > 0 || len(c.Abilities) > 0 || len(c.Trivia) > 0
}

// FilterMetadata is a derived singleton rebuilt periodically from the anime
// table. It is a cache for the UI's filter pickers, never authoritative.
type FilterMetadata struct {
	ID         uint64 `boltholdKey:"ID"`
	Genres     []string
	Studios    []string
	Themes     []string
	YearMin    int
	YearMax    int
	AnimeCount int
	RebuiltAt  time.Time
}

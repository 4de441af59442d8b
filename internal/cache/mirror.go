package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/kitsouko/aniarr/internal/models"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const (
	defaultTTL      = 24 * time.Hour
	cleanupInterval = 1 * time.Hour
)

// Mirror is a best-effort local cache of enriched characters and episode
// lists, keyed by anime id. It survives restarts through a JSON snapshot file
// but is never the source of truth: the database always wins on
// reconciliation, and any parse failure is treated as a cache miss.
type Mirror struct {
	mem    *gocache.Cache
	path   string
	mu     sync.Mutex // serializes snapshot writes
	logger *logrus.Logger
}

// NewMirror creates a mirror backed by the given snapshot file, loading any
// previous snapshot. A missing or corrupt snapshot is silently ignored.
func NewMirror(path string, logger *logrus.Logger) *Mirror {
	m := &Mirror{
		mem:    gocache.New(defaultTTL, cleanupInterval),
		path:   path,
		logger: logger,
	}
	m.loadSnapshot()
	return m
}

func characterKey(animeID uint64) string { return fmt.Sprintf("anime_%d_characters", animeID) }
func episodeKey(animeID uint64) string   { return fmt.Sprintf("anime_%d_episodes", animeID) }

// Characters returns the cached character list for an anime, if present
func (m *Mirror) Characters(animeID uint64) ([]models.Character, bool) {
	raw, found := m.mem.Get(characterKey(animeID))
	if !found {
		return nil, false
	}

	var characters []models.Character
	if err := json.Unmarshal(raw.(json.RawMessage), &characters); err != nil {
		m.logger.WithError(err).Debug("Discarding unparseable cached characters")
		m.mem.Delete(characterKey(animeID))
		return nil, false
	}
	return characters, true
}

// Episodes returns the cached episode list for an anime, if present
func (m *Mirror) Episodes(animeID uint64) ([]models.Episode, bool) {
	raw, found := m.mem.Get(episodeKey(animeID))
	if !found {
		return nil, false
	}

	var episodes []models.Episode
	if err := json.Unmarshal(raw.(json.RawMessage), &episodes); err != nil {
		m.logger.WithError(err).Debug("Discarding unparseable cached episodes")
		m.mem.Delete(episodeKey(animeID))
		return nil, false
	}
	return episodes, true
}

// SaveCharacters stores the character list and persists the snapshot
func (m *Mirror) SaveCharacters(animeID uint64, characters []models.Character) {
	m.save(characterKey(animeID), characters)
}

// SaveEpisodes stores the episode list and persists the snapshot
func (m *Mirror) SaveEpisodes(animeID uint64, episodes []models.Episode) {
	m.save(episodeKey(animeID), episodes)
}

func (m *Mirror) save(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to serialize cache entry")
		return
	}
	m.mem.Set(key, json.RawMessage(data), gocache.DefaultExpiration)
	m.persistSnapshot()
}

// loadSnapshot reads the snapshot file into the in-memory tier
func (m *Mirror) loadSnapshot() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}

	var snapshot map[string]json.RawMessage
	if err := json.Unmarshal(data, &snapshot); err != nil {
		m.logger.WithError(err).Warn("Ignoring corrupt cache snapshot")
		return
	}

	for key, raw := range snapshot {
		m.mem.Set(key, raw, gocache.DefaultExpiration)
	}
	m.logger.WithField("entries", len(snapshot)).Debug("Cache snapshot loaded")
}

// persistSnapshot writes all live entries to the snapshot file. Failures are
// logged and swallowed; the mirror is an optimization only.
func (m *Mirror) persistSnapshot() {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.mem.Items()
	snapshot := make(map[string]json.RawMessage, len(items))
	for key, item := range items {
		if raw, ok := item.Object.(json.RawMessage); ok {
			snapshot[key] = raw
		}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		m.logger.WithError(err).Warn("Failed to serialize cache snapshot")
		return
	}
	if err := os.WriteFile(m.path, data, 0644); err != nil {
		m.logger.WithError(err).Warn("Failed to write cache snapshot")
	}
}

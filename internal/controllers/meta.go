package controllers

import (
	"sort"
	"time"

	"github.com/kitsouko/aniarr/internal/models"
	"github.com/kitsouko/aniarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// MetaController rebuilds the derived filter metadata singleton from the
// anime table. The singleton feeds the UI's filter pickers and is never
// authoritative.
type MetaController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewMetaController creates a new filter metadata controller
func NewMetaController(db *models.Database, logger *logrus.Logger) *MetaController {
	return &MetaController{db: db, logger: logger}
}

// Rebuild scans the catalog and replaces the filter metadata singleton
func (c *MetaController) Rebuild() (*models.FilterMetadata, error) {
	animes, err := c.db.GetAllAnimes()
	if err != nil {
		return nil, err
	}

	genres := make(map[string]bool)
	studios := make(map[string]bool)
	themes := make(map[string]bool)
	yearMin, yearMax := 0, 0

	for _, anime := range animes {
		for _, g := range anime.Genres {
			genres[g] = true
		}
		for _, s := range anime.Studios {
			studios[s] = true
		}
		for _, t := range anime.Themes {
			themes[t] = true
		}

		year := 0
		for _, ep := range anime.Episodes {
			if ep.AirDate != nil {
				year = ep.AirDate.Year()
				break
			}
		}
		if year == 0 {
			year = utils.ExtractYear(anime.Title)
		}
		if year != 0 {
			if yearMin == 0 || year < yearMin {
				yearMin = year
			}
			if year > yearMax {
				yearMax = year
			}
		}
	}

	meta := &models.FilterMetadata{
		Genres:     sortedKeys(genres),
		Studios:    sortedKeys(studios),
		Themes:     sortedKeys(themes),
		YearMin:    yearMin,
		YearMax:    yearMax,
		AnimeCount: len(animes),
		RebuiltAt:  time.Now(),
	}
	if err := c.db.SaveFilterMetadata(meta); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"genres":  len(meta.Genres),
		"studios": len(meta.Studios),
		"animes":  meta.AnimeCount,
	}).Info("Filter metadata rebuilt")

	return meta, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for key := range set {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

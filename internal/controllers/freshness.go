package controllers

import (
	"strings"
	"time"

	"github.com/kitsouko/aniarr/internal/models"
)

// Fixed penalties per missing or stale signal
const (
	penaltyNoEpisodes   = 30
	penaltyNoCharacters = 25
	penaltyStaleFetch   = 25
	penaltyNoNextAiring = 20
)

// FreshnessReport is the evaluator's verdict on one anime record
type FreshnessReport struct {
	Score             int                    `json:"freshness_score"` // 0..100
	Priority          models.RefreshPriority `json:"priority"`
	Reason            string                 `json:"reason"`
	RecommendedAction string                 `json:"recommended_action"`
}

// FreshnessEvaluator scores how complete and current an anime record's cached
// external data is. Evaluate is a pure function of the record and the clock;
// it performs no I/O.
type FreshnessEvaluator struct {
	stalenessWindow time.Duration
}

// NewFreshnessEvaluator creates an evaluator with the given staleness window
func NewFreshnessEvaluator(stalenessWindow time.Duration) *FreshnessEvaluator {
	return &FreshnessEvaluator{stalenessWindow: stalenessWindow}
}

// Evaluate scores the record against the current time
func (e *FreshnessEvaluator) Evaluate(anime *models.Anime) FreshnessReport {
	return e.EvaluateAt(anime, time.Now())
}

// EvaluateAt scores the record against an explicit clock. Score starts at 100
// and loses a fixed penalty per degraded signal, clamped to [0,100]; adding a
// degraded signal can therefore never raise the score.
func (e *FreshnessEvaluator) EvaluateAt(anime *models.Anime, now time.Time) FreshnessReport {
	score := 100
	var reasons []string

	if len(anime.Episodes) == 0 {
		score -= penaltyNoEpisodes
		reasons = append(reasons, "episode list missing")
	}
	if len(anime.Characters) == 0 {
		score -= penaltyNoCharacters
		reasons = append(reasons, "character list missing")
	}
	if anime.LastFetchedAt == nil {
		score -= penaltyStaleFetch
		reasons = append(reasons, "never fetched from external catalog")
	} else if now.Sub(*anime.LastFetchedAt) > e.stalenessWindow {
		score -= penaltyStaleFetch
		reasons = append(reasons, "external metadata is stale")
	}
	if anime.AiringStatus == models.AiringStatusReleasing && anime.NextAiringEpisode == nil {
		score -= penaltyNoNextAiring
		reasons = append(reasons, "currently airing without next episode projection")
	}

	if score < 0 {
		score = 0
	}

	priority := priorityForScore(score)
	reason := "record is complete and current"
	if len(reasons) > 0 {
		reason = strings.Join(reasons, "; ")
	}

	return FreshnessReport{
		Score:             score,
		Priority:          priority,
		Reason:            reason,
		RecommendedAction: recommendedAction(priority),
	}
}

func priorityForScore(score int) models.RefreshPriority {
	switch {
	case score < 30:
		return models.PriorityCritical
	case score < 50:
		return models.PriorityHigh
	case score < 70:
		return models.PriorityMedium
	case score < 90:
		return models.PriorityLow
	default:
		return models.PriorityNone
	}
}

func recommendedAction(priority models.RefreshPriority) string {
	switch priority {
	case models.PriorityCritical:
		return "refresh immediately"
	case models.PriorityHigh:
		return "refresh soon"
	case models.PriorityMedium:
		return "refresh on next visit"
	case models.PriorityLow:
		return "refresh during next background sweep"
	default:
		return "no refresh needed"
	}
}

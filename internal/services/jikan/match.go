package jikan

import (
	"github.com/agnivade/levenshtein"
	"github.com/kitsouko/aniarr/internal/utils"
)

// bestMatch picks the candidate whose title (or alternate title) is closest to
// the query by Levenshtein distance over normalized strings. Candidates beyond
// the distance limit are rejected with ErrNoMatch.
func bestMatch(query string, candidates []animeData) (*animeData, error) {
	normalizedQuery := utils.NormalizeTitle(query)
	limit := maxMatchDistance(query)

	bestDistance := -1
	bestIndex := -1

	for i, candidate := range candidates {
		distance := candidateDistance(normalizedQuery, candidate)
		if distance > limit {
			continue
		}
		if bestDistance == -1 || distance < bestDistance {
			bestDistance = distance
			bestIndex = i
		}
	}

	if bestIndex == -1 {
		return nil, ErrNoMatch
	}
	return &candidates[bestIndex], nil
}

// candidateDistance is the minimum distance across all of a candidate's titles
func candidateDistance(normalizedQuery string, candidate animeData) int {
	titles := []string{candidate.Title, candidate.TitleEN, candidate.TitleJP}

	best := -1
	for _, title := range titles {
		if title == "" {
			continue
		}
		distance := levenshtein.ComputeDistance(normalizedQuery, utils.NormalizeTitle(title))
		if best == -1 || distance < best {
			best = distance
		}
	}
	if best == -1 {
		return int(^uint(0) >> 1)
	}
	return best
}

package jikan

import "testing"

func TestBestMatchExactTitle(t *testing.T) {
	candidates := []animeData{
		{MalID: 1, Title: "Cowboy Bebop"},
		{MalID: 2, Title: "Cowboy Bebop: The Movie"},
		{MalID: 3, Title: "Space Dandy"},
	}

	match, err := bestMatch("Cowboy Bebop", candidates)
	if err != nil {
		t.Fatalf("bestMatch failed: %v", err)
	}
	if match.MalID != 1 {
		t.Errorf("Expected exact title to win, got id %d", match.MalID)
	}
}

func TestBestMatchIgnoresPunctuationAndCase(t *testing.T) {
	candidates := []animeData{
		{MalID: 1, Title: "Re:ZERO -Starting Life in Another World-"},
		{MalID: 2, Title: "Zero no Tsukaima"},
	}

	match, err := bestMatch("re zero starting life in another world", candidates)
	if err != nil {
		t.Fatalf("bestMatch failed: %v", err)
	}
	if match.MalID != 1 {
		t.Errorf("Expected normalized match, got id %d", match.MalID)
	}
}

func TestBestMatchUsesAlternateTitles(t *testing.T) {
	candidates := []animeData{
		{MalID: 1, Title: "Shingeki no Kyojin", TitleEN: "Attack on Titan"},
		{MalID: 2, Title: "Kill la Kill"},
	}

	match, err := bestMatch("Attack on Titan", candidates)
	if err != nil {
		t.Fatalf("bestMatch failed: %v", err)
	}
	if match.MalID != 1 {
		t.Errorf("Expected English title to match, got id %d", match.MalID)
	}
}

func TestBestMatchToleratesSmallTypos(t *testing.T) {
	candidates := []animeData{
		{MalID: 1, Title: "Fullmetal Alchemist Brotherhood"},
	}

	match, err := bestMatch("Fullmetal Alchemist Brotherhod", candidates)
	if err != nil {
		t.Fatalf("bestMatch failed: %v", err)
	}
	if match.MalID != 1 {
		t.Errorf("Expected typo-tolerant match, got id %d", match.MalID)
	}
}

func TestBestMatchRejectsDistantCandidates(t *testing.T) {
	candidates := []animeData{
		{MalID: 1, Title: "Completely Unrelated Series"},
	}

	if _, err := bestMatch("Naruto", candidates); err != ErrNoMatch {
		t.Errorf("Expected ErrNoMatch, got %v", err)
	}
}

func TestBestMatchEmptyCandidates(t *testing.T) {
	if _, err := bestMatch("Anything", nil); err != ErrNoMatch {
		t.Errorf("Expected ErrNoMatch for empty candidate list, got %v", err)
	}
}

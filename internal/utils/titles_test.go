package utils

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cowboy Bebop", "cowboy bebop"},
		{"Re:ZERO -Starting Life in Another World-", "re zero starting life in another world"},
		{"STEINS;GATE", "steins gate"},
		{"  Spaced   Out  ", "spaced out"},
		{"Ｆｕｌｌｗｉｄｔｈ", "fullwidth"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Hunter x Hunter (2011)", 2011},
		{"Classic Movie 1997", 1997},
		{"No Year Here", 0},
		{"Episode 12345", 0},
		{"Space Odyssey 2001: Remastered", 2001},
	}

	for _, tt := range tests {
		if got := ExtractYear(tt.in); got != tt.want {
			t.Errorf("ExtractYear(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

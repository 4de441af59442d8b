package utils

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var nonWordRegex = regexp.MustCompile(`[^a-z0-9 ]+`)

// NormalizeTitle lowers, NFKC-normalizes and strips punctuation from a title
// so that provider titles and stored titles compare on equal footing.
func NormalizeTitle(title string) string {
	normalized := norm.NFKC.String(title)
	normalized = strings.ToLower(normalized)
	normalized = nonWordRegex.ReplaceAllString(normalized, " ")
	return strings.Join(strings.Fields(normalized), " ")
}

var yearRegex = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

// ExtractYear extracts a 4-digit year from a title or date string
// Returns 0 if no year is found
func ExtractYear(s string) int {
	matches := yearRegex.FindStringSubmatch(s)
	if len(matches) > 1 {
		year, err := strconv.Atoi(matches[1])
		if err == nil {
			return year
		}
	}
	return 0
}

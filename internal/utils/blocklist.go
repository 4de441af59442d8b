package utils

import (
	"bufio"
	"os"
	"strings"
)

// Blocklist holds terms rejected in review and comment text
type Blocklist struct {
	terms []string
}

// NewBlocklist creates a blocklist from an in-memory term list
func NewBlocklist(terms []string) *Blocklist {
	return &Blocklist{terms: terms}
}

// LoadBlocklist loads blocklist terms from a file
func LoadBlocklist(path string) (*Blocklist, error) {
	// If file doesn't exist, return empty blocklist
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Blocklist{terms: []string{}}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var terms []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term != "" && !strings.HasPrefix(term, "#") {
			terms = append(terms, term)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &Blocklist{terms: terms}, nil
}

// IsBlocked checks if a text matches any blocklist term
// Returns (isBlocked, matchedTerm)
func (b *Blocklist) IsBlocked(text string) (bool, string) {
	textLower := strings.ToLower(text)

	for _, term := range b.terms {
		termLower := strings.ToLower(term)
		if strings.Contains(textLower, termLower) {
			return true, term
		}
	}

	return false, ""
}

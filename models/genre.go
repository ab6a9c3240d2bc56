package models

import (
	"strings"
)

// genre separators: ASCII comma, full-width comma and ideographic comma
func isGenreSeparator(r rune) bool {
	switch r {
	case ',', '，', '、':
		return true
	}
	return false
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// ParseGenres splits a raw genre field into trimmed, non-empty labels in
// their input order. Duplicate labels are kept once.
func ParseGenres(raw string) []string {
	parts := strings.FieldsFunc(raw, isGenreSeparator)
	labels := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		p = trimmed(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		labels = append(labels, p)
	}
	return labels
}

// FormatGenres joins labels back into the stored representation.
func FormatGenres(labels []string) string {
	return strings.Join(ParseGenres(strings.Join(labels, ",")), ", ")
}

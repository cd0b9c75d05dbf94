package utils

import "strings"

// NormalizePlate приводит номер к единому виду для поиска по журналу:
// без пробелов и дефисов, в верхнем регистре.
func NormalizePlate(raw string) string {
	normalized := strings.TrimSpace(raw)
	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ToUpper(normalized)
	return normalized
}

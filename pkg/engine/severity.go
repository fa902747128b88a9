package engine

import "strings"

// Normalized severity buckets.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

var severityBuckets = map[string]string{
	"error":    SeverityHigh,
	"high":     SeverityHigh,
	"critical": SeverityHigh,
	"warning":  SeverityMedium,
	"medium":   SeverityMedium,
}

// NormalizeSeverity collapses a free-form tool severity into high, medium or low.
// Anything not in the mapping table is low.
func NormalizeSeverity(s string) string {
	if b, ok := severityBuckets[strings.ToLower(strings.TrimSpace(s))]; ok {
		return b
	}
	return SeverityLow
}

// SeverityBuckets returns the mapping table grouped by bucket, for callers
// that apply the mapping in SQL.
func SeverityBuckets() map[string][]string {
	out := make(map[string][]string)
	for raw, bucket := range severityBuckets {
		out[bucket] = append(out[bucket], raw)
	}
	return out
}

// Rank orders normalized buckets for comparison (low=1, high=3).
func Rank(bucket string) int {
	switch bucket {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

package search

import (
	"math"
	"sort"
)

const scoreScale = 1e6

// RoundScore rounds a similarity score to 6 decimal places, half away from
// zero.
func RoundScore(score float64) float64 {
	return math.Round(score*scoreScale) / scoreScale
}

// validScore reports whether a rounded score may be shown for threshold.
func validScore(score, threshold float64) bool {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return false
	}
	return score >= threshold && score >= 0 && score <= 1
}

// shape rounds the score of each row, drops rows whose rounded score is not
// valid for the request, orders the rest by descending score and truncates
// them to the request limit. Rows with equal scores keep the order storage
// returned them in.
func shape[T any](rows []T, req Request, score func(*T) *float64) []T {
	kept := make([]T, 0, len(rows))
	for _, row := range rows {
		s := score(&row)
		*s = RoundScore(*s)
		if !validScore(*s, req.Threshold) {
			continue
		}
		kept = append(kept, row)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return *score(&kept[i]) > *score(&kept[j])
	})

	if len(kept) > req.Limit {
		kept = kept[:req.Limit]
	}
	return kept
}

// Package fusion implements Fusion & Boost (C4): min-max normalization of
// dense/sparse scores, weighted linear fusion, and multiplicative
// metadata/term-match boosts. Every function here is pure: identical inputs
// yield identical ordering (spec §4.5, invariants 2 and 3).
package fusion

// normalizeMinMax maps scores to [0,1]. If max == min, every score becomes
// zero rather than collapsing to 1.0 — a tie must not look like top rank.
func normalizeMinMax(scores map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(scores))
	if len(scores) == 0 {
		return out
	}
	min, max := scoreRange(scores)
	if max == min {
		for id := range scores {
			out[id] = 0
		}
		return out
	}
	for id, s := range scores {
		out[id] = (s - min) / (max - min)
	}
	return out
}

func scoreRange(scores map[string]float64) (min, max float64) {
	first := true
	for _, s := range scores {
		if first {
			min, max = s, s
			first = false
			continue
		}
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	return
}

package prepare

import (
	"regexp"
	"strings"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// DetectTerms tokenizes text to lowercase alphanumerics and scans for
// dictionary membership, preferring the longest match (trigram > bigram >
// unigram) when spans overlap, and emitting the union of non-overlapping
// matches with their dictionary weights. Pure and total: an empty slice is
// a valid result, never an error.
func DetectTerms(text string) []domain.DetectedTerm {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil
	}

	taken := make([]bool, len(tokens))
	var out []domain.DetectedTerm
	seen := map[string]bool{}

	emit := func(term string, weight float64, start, span int) bool {
		for i := start; i < start+span; i++ {
			if taken[i] {
				return false
			}
		}
		if seen[term] {
			for i := start; i < start+span; i++ {
				taken[i] = true
			}
			return true
		}
		for i := start; i < start+span; i++ {
			taken[i] = true
		}
		seen[term] = true
		out = append(out, domain.DetectedTerm{Term: term, Weight: weight})
		return true
	}

	for i := range tokens {
		if i+3 <= len(tokens) {
			tri := strings.Join(tokens[i:i+3], " ")
			if w, ok := trigrams[tri]; ok {
				emit(tri, w, i, 3)
				continue
			}
		}
		if i+2 <= len(tokens) {
			bi := strings.Join(tokens[i:i+2], " ")
			if w, ok := bigrams[bi]; ok {
				emit(bi, w, i, 2)
				continue
			}
		}
		if w, ok := unigrams[tokens[i]]; ok {
			emit(tokens[i], w, i, 1)
		}
	}

	return out
}

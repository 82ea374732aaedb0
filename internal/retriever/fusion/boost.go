package fusion

import (
	"strings"
	"time"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

const (
	boostDocument = 1.15
	boostPage     = 1.10
	boostBlog     = 1.00
	boostEmail    = 1.05

	boostFilenameTermMatch   = 1.25
	boostFolderPathTermMatch = 1.10

	decayOver24Months = 0.97
	decayOver48Months = 0.93

	ceilingLow  = 0.5
	ceilingHigh = 1.75

	monthsToConsiderOld    = 24
	monthsToConsiderStale  = 48
)

// applyBoosts computes the multiplicative boost for one candidate and the
// human-readable reasons behind it (spec §4.5). Each boost is applied once
// per chunk; the result is clamped to [0.5, 1.75].
func applyBoosts(md domain.Metadata, terms []domain.DetectedTerm, now time.Time) (float64, []string) {
	multiplier := 1.0
	var reasons []string

	switch md.SourceType() {
	case domain.SourceDocument:
		multiplier *= boostDocument
		reasons = append(reasons, "source_type=document x1.15")
	case domain.SourcePage:
		multiplier *= boostPage
		reasons = append(reasons, "source_type=page x1.10")
	case domain.SourceEmail:
		multiplier *= boostEmail
		reasons = append(reasons, "source_type=email x1.05")
	case domain.SourceBlog:
		multiplier *= boostBlog
	}

	if countTermMatches(md.FileName(), terms) >= 2 {
		multiplier *= boostFilenameTermMatch
		reasons = append(reasons, "filename_term_match x1.25")
	}
	if countTermMatches(md.FolderPath(), terms) >= 1 {
		multiplier *= boostFolderPathTermMatch
		reasons = append(reasons, "folder_path_term_match x1.10")
	}

	if modified, ok := md.ModifiedAt(); ok {
		age := now.Sub(modified)
		monthsOld := age.Hours() / (24 * 30)
		switch {
		case monthsOld > monthsToConsiderStale:
			multiplier *= decayOver48Months
			reasons = append(reasons, "recency_decay>48mo x0.93")
		case monthsOld > monthsToConsiderOld:
			multiplier *= decayOver24Months
			reasons = append(reasons, "recency_decay>24mo x0.97")
		}
	}

	if multiplier < ceilingLow {
		multiplier = ceilingLow
	}
	if multiplier > ceilingHigh {
		multiplier = ceilingHigh
	}
	return multiplier, reasons
}

// countTermMatches reports how many distinct detected terms appear
// case-insensitively as substrings of field.
func countTermMatches(field string, terms []domain.DetectedTerm) int {
	if field == "" || len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(field)
	count := 0
	for _, t := range terms {
		if strings.Contains(lower, strings.ToLower(t.Term)) {
			count++
		}
	}
	return count
}

package fusion

import (
	"sort"
	"time"

	"cloudfuze.com/retriever/internal/retriever/dense"
	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/sparse"
)

// Defaults for the fusion weights (spec §4.5 and §6.3).
const (
	DefaultAlpha = 0.7
	DefaultBeta  = 0.3
	DefaultFuseK = 50
)

// candidateText/Metadata hydration: a candidate may have come from only
// one side of the fan-out, so text/metadata must be merged from whichever
// side saw it.
type merged struct {
	text     string
	metadata domain.Metadata
	dense    float64
	sparse   float64
	hasDense bool
}

// Fuse combines dense and sparse candidate lists via min-max normalization
// and weighted linear fusion, applies boosts, and returns the top kFuse
// results ordered by descending final score, ties broken by the larger boost
// and then by chunk id. Pure given its inputs and now.
func Fuse(denseCands []dense.Candidate, sparseCands []sparse.Candidate, sparseIndex *sparse.Index, terms []domain.DetectedTerm, alpha, beta float64, kFuse int, now time.Time) []domain.RetrievalResult {
	if alpha == 0 && beta == 0 {
		alpha, beta = DefaultAlpha, DefaultBeta
	}
	if kFuse <= 0 {
		kFuse = DefaultFuseK
	}

	byID := map[string]*merged{}

	denseRaw := map[string]float64{}
	for _, c := range denseCands {
		denseRaw[c.ChunkID] = c.Score
		byID[c.ChunkID] = &merged{text: c.Text, metadata: c.Metadata, hasDense: true}
	}
	sparseRaw := map[string]float64{}
	for _, c := range sparseCands {
		sparseRaw[c.ChunkID] = c.Score
		if _, ok := byID[c.ChunkID]; !ok {
			text, md, _ := sparseIndex.DocByID(c.ChunkID)
			byID[c.ChunkID] = &merged{text: text, metadata: md}
		}
	}

	denseNorm := normalizeMinMax(denseRaw)
	sparseNorm := normalizeMinMax(sparseRaw)

	out := make([]domain.RetrievalResult, 0, len(byID))
	for id, m := range byID {
		dn := denseNorm[id] // zero value if absent from dense list, matching spec's "treat missing as 0"
		sn := sparseNorm[id]
		fused := alpha*dn + beta*sn

		boost, reasons := applyBoosts(m.metadata, terms, now)
		final := fused * boost

		out = append(out, domain.RetrievalResult{
			ChunkID:     id,
			Text:        m.text,
			Metadata:    m.metadata,
			DenseScore:  denseRaw[id],
			SparseScore: sparseRaw[id],
			Boost:       boost,
			FinalScore:  final,
			Reasons:     reasons,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		// Equal raw scores normalize to all-zero finals; boosts then decide.
		if out[i].Boost != out[j].Boost {
			return out[i].Boost > out[j].Boost
		}
		return out[i].ChunkID < out[j].ChunkID // deterministic tie-break
	})

	if len(out) > kFuse {
		out = out[:kFuse]
	}
	return out
}

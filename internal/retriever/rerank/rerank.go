// Package rerank implements the Reranker (C5): a cross-encoder scores
// (query, passage) pairs for the top-K_fused candidates, replacing
// final_score with a blend of the fused score and the reranked score.
//
// Concurrency shape (bounded worker pool, early exit, graceful timeout
// degradation) is grounded on the pack's LLMReranker.Rerank pattern.
package rerank

import (
	"context"
	"sort"
	"time"

	"cloudfuze.com/retriever/internal/retriever/domain"
)

const (
	defaultConcurrency = 3
	defaultTimeout     = 3 * time.Second

	fusedWeight  = 0.4
	rerankWeight = 0.6
)

// Scorer is the cross-encoder collaborator contract (spec §6.2:
// score(query, [passage]) -> [float]).
type Scorer interface {
	Score(ctx context.Context, query string, passage string) (float64, error)
}

// Mode controls whether reranking changes ordering.
type Mode int

const (
	// Off disables reranking entirely; the caller should not invoke Rerank.
	Off Mode = iota
	// On reorders by the blended score.
	On
	// Shadow computes and records rerank scores without changing ordering.
	Shadow
)

// Result carries the (possibly reordered) candidates plus whether the
// reranker failed and fell back to the fused ordering.
type Result struct {
	Candidates []domain.RetrievalResult
	Failed     bool
}

// Rerank scores the top candidates with bounded concurrency and waits for
// every score, stopping early only if the context is cancelled or the
// rerank timeout passes. On timeout or any scorer error it degrades
// gracefully by returning the input order unmodified, marking
// Failed so the pipeline can record rerank_failed=true (spec §7 partial
// success).
func Rerank(ctx context.Context, scorer Scorer, mode Mode, preparedQuestion string, candidates []domain.RetrievalResult, kFinal int) Result {
	if mode == Off || len(candidates) == 0 {
		return Result{Candidates: capAt(candidates, kFinal)}
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	scores := make([]float64, len(candidates))
	errs := make([]error, len(candidates))

	sem := make(chan struct{}, defaultConcurrency)
	done := make(chan int, len(candidates))
	for i, c := range candidates {
		go func(i int, text string) {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				done <- i
				return
			}
			defer func() { <-sem }()
			s, err := scorer.Score(ctx, preparedQuestion, text)
			scores[i] = s
			errs[i] = err
			done <- i
		}(i, c.Text)
	}

	completed := 0
	for completed < len(candidates) {
		select {
		case <-done:
			completed++
		case <-ctx.Done():
			return Result{Candidates: capAt(candidates, kFinal), Failed: true}
		}
	}

	for _, err := range errs {
		if err != nil {
			return Result{Candidates: capAt(candidates, kFinal), Failed: true}
		}
	}

	rerankNorm := normalize(scores)
	blended := make([]domain.RetrievalResult, len(candidates))
	for i, c := range candidates {
		rc := c
		rn := rerankNorm[i]
		rc.RerankScore = &scores[i]
		if mode == On {
			rc.FinalScore = fusedWeight*c.FinalScore + rerankWeight*rn
		}
		blended[i] = rc
	}

	if mode == On {
		sort.SliceStable(blended, func(i, j int) bool { return blended[i].FinalScore > blended[j].FinalScore })
	}
	// Shadow mode: order is left exactly as the fused ranking produced it.

	return Result{Candidates: capAt(blended, kFinal)}
}

func capAt(results []domain.RetrievalResult, k int) []domain.RetrievalResult {
	if k > 0 && len(results) > k {
		return results[:k]
	}
	return results
}

func normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	min, max := scores[0], scores[0]
	for _, s := range scores {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	if max == min {
		return out
	}
	for i, s := range scores {
		out[i] = (s - min) / (max - min)
	}
	return out
}

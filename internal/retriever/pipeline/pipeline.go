// Package pipeline orchestrates a single request end to end in the
// dependency order spec.md §2 fixes: C9(open) -> C10 -> C1 -> {C2, C3} ->
// C4 -> C5 -> C6 -> C7 -> C8 -> C9(close).
package pipeline

import (
	"context"
	"time"

	"cloudfuze.com/retriever/internal/observability"
	assembler "cloudfuze.com/retriever/internal/retriever/context"
	"cloudfuze.com/retriever/internal/retriever/config"
	"cloudfuze.com/retriever/internal/retriever/dense"
	"cloudfuze.com/retriever/internal/retriever/domain"
	"cloudfuze.com/retriever/internal/retriever/fusion"
	"cloudfuze.com/retriever/internal/retriever/gate"
	"cloudfuze.com/retriever/internal/retriever/generate"
	"cloudfuze.com/retriever/internal/retriever/prepare"
	"cloudfuze.com/retriever/internal/retriever/prompt"
	"cloudfuze.com/retriever/internal/retriever/registry"
	"cloudfuze.com/retriever/internal/retriever/rerank"
	"cloudfuze.com/retriever/internal/retriever/sparse"
	"cloudfuze.com/retriever/internal/retriever/trace"
)

// Request is a single /ask or /ask/stream call.
type Request struct {
	TraceID   string
	UserID    string
	SessionID string
	Question  string
}

// Ask runs the pipeline through generation, invoking emit for every
// StreamEvent (status/token/done/error) the Generator produces, and
// returns the finished Trace for the caller to persist/export.
func Ask(ctx context.Context, reg *registry.Registry, req Request, emit func(domain.StreamEvent)) domain.Trace {
	ctx = observability.WithRequestContext(ctx, req.TraceID, req.UserID, req.SessionID)
	builder := trace.NewBuilder(req.TraceID, req.UserID, req.SessionID, req.Question)
	cfg := reg.Config.Retrieval

	emit(domain.StreamEvent{Kind: domain.EventStatus, Tag: domain.StatusAnalyzing})

	history, _ := reg.Conv.GetContext(ctx, req.UserID, req.SessionID, cfg.ConversationMaxPairs)
	conversationContext := flattenHistory(history)

	endGate := builder.Start(domain.SpanRelevanceGate, map[string]any{"question": req.Question})
	isFollowup := decideFollowup(ctx, reg, req.Question, conversationContext)
	endGate(map[string]any{"is_followup": isFollowup}, nil)

	endPrepare := builder.Start(domain.SpanQueryPrepare, map[string]any{"raw_question": req.Question})
	preparedQuestion := prepare.Prepare(req.Question, history, isFollowup)
	terms := prepare.DetectTerms(preparedQuestion)
	endPrepare(map[string]any{"prepared_question": preparedQuestion, "term_count": len(terms)}, nil)

	emit(domain.StreamEvent{Kind: domain.EventStatus, Tag: domain.StatusRetrieving})

	deadline := time.Duration(cfg.RequestDeadlineMS) * time.Millisecond
	denseCands, sparseCands := retrieveBothSides(ctx, reg, builder, preparedQuestion, terms, cfg, deadline)

	endFuse := builder.Start(domain.SpanFuseBoost, nil)
	fused := fusion.Fuse(denseCands, sparseCands, reg.Sparse, terms, cfg.AlphaDense, cfg.BetaSparse, cfg.FuseK, time.Now())
	builder.AttachCandidates(domain.SpanFuseBoost, fused)
	endFuse(map[string]any{"candidate_count": len(fused)}, nil)

	rerankFailed := false
	final := fused
	if cfg.RerankEnabled || cfg.RerankShadow {
		emit(domain.StreamEvent{Kind: domain.EventStatus, Tag: domain.StatusReranking})
		mode := rerank.On
		if cfg.RerankShadow && !cfg.RerankEnabled {
			mode = rerank.Shadow
		}
		endRerank := builder.Start(domain.SpanRerank, nil)
		result := rerank.Rerank(ctx, reg.Scorer, mode, preparedQuestion, fused, cfg.FinalK)
		builder.AttachCandidates(domain.SpanRerank, result.Candidates)
		rerankFailed = result.Failed
		endRerank(map[string]any{"failed": result.Failed}, nil)
		final = result.Candidates
	} else if cfg.FinalK > 0 && len(final) > cfg.FinalK {
		final = final[:cfg.FinalK]
	}

	emit(domain.StreamEvent{Kind: domain.EventStatus, Tag: domain.StatusReadingSource})
	endAssemble := builder.Start(domain.SpanAssembleContext, nil)
	assembled := assembler.Assemble(final, cfg.ContextTokenBudget, assembler.HeuristicTokenizer{})
	endAssemble(map[string]any{"token_count": assembled.TokenCount, "included": len(assembled.IncludedIDs)}, nil)

	endCompile := builder.Start(domain.SpanCompilePrompt, nil)
	compiled := prompt.Compile(assembled.Context, preparedQuestion)
	endCompile(map[string]any{"prompt_chars": len(compiled.Concatenated())}, nil)

	refused := assembled.Context == ""
	citations := citationsFor(final, assembled.IncludedIDs)

	endGenerate := builder.Start(domain.SpanGenerate, nil)
	tokensOut := 0
	countingEmit := func(e domain.StreamEvent) {
		if e.Kind == domain.EventToken {
			tokensOut++
		}
		emit(e)
	}
	genErr := generate.Run(ctx, reg.LLM, cfg.LLMModel, generate.Request{
		Compiled:  compiled,
		TraceID:   req.TraceID,
		Citations: citations,
		Refused:   refused,
	}, countingEmit)
	endGenerate(map[string]any{"tokens_out": tokensOut}, genErr)

	status := domain.StatusOK
	switch {
	case genErr != nil:
		status = domain.StatusErrored
	case refused:
		status = domain.StatusRefused
	}

	_ = reg.Conv.Append(ctx, req.UserID, req.SessionID, domain.ConversationTurn{Role: domain.RoleUser, Content: req.Question, Timestamp: time.Now().Unix()})

	tr := builder.Finish(status, compiled.Concatenated(), tokensOut, rerankFailed, refused)
	trace.ExportOTel(ctx, tr)
	if reg.Trace != nil {
		go reg.Trace.Publish(context.WithoutCancel(ctx), tr)
	}
	return tr
}

func decideFollowup(ctx context.Context, reg *registry.Registry, question, conversationContext string) bool {
	if reg.Cache != nil {
		if v, ok := reg.Cache.GetGateDecision(ctx, conversationContext, question); ok {
			return v
		}
	}
	decision := gate.Decide(ctx, reg.LLM, reg.Config.Retrieval.LLMModel, question, conversationContext)
	if reg.Cache != nil {
		reg.Cache.SetGateDecision(ctx, conversationContext, question, decision)
	}
	return decision
}

func retrieveBothSides(ctx context.Context, reg *registry.Registry, builder *trace.Builder, preparedQuestion string, terms []domain.DetectedTerm, cfg config.RetrievalConfig, deadline time.Duration) ([]dense.Candidate, []sparse.Candidate) {
	var denseCands []dense.Candidate
	var sparseCands []sparse.Candidate
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		endDense := builder.Start(domain.SpanDenseRetrieve, nil)
		if reg.Vector == nil {
			endDense(map[string]any{"skipped": true}, nil)
			return
		}
		cands, err := dense.Retrieve(ctx, reg.Embedder, reg.Vector, preparedQuestion, terms, cfg.DenseK, deadline)
		denseCands = cands
		endDense(map[string]any{"count": len(cands)}, err)
	}()

	go func() {
		defer func() { done <- struct{}{} }()
		endSparse := builder.Start(domain.SpanSparseRetrieve, nil)
		cands, err := reg.Sparse.QueryText(ctx, preparedQuestion, cfg.SparseK)
		sparseCands = cands
		endSparse(map[string]any{"count": len(cands)}, err)
	}()

	<-done
	<-done
	return denseCands, sparseCands
}

func flattenHistory(turns []domain.ConversationTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var out string
	for _, t := range turns {
		out += string(t.Role) + ": " + t.Content + "\n"
	}
	return out
}

func citationsFor(results []domain.RetrievalResult, includedIDs []string) []domain.Citation {
	included := map[string]bool{}
	for _, id := range includedIDs {
		included[id] = true
	}
	var out []domain.Citation
	for _, r := range results {
		if !included[r.ChunkID] {
			continue
		}
		out = append(out, domain.Citation{
			FileName:   r.Metadata.FileName(),
			URL:        r.Metadata.DownloadURL(),
			SourceType: string(r.Metadata.SourceType()),
		})
	}
	return out
}

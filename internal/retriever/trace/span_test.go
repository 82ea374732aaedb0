package trace

import (
	"errors"
	"testing"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"github.com/stretchr/testify/require"
)

func TestBuilderRecordsSpanTimingAndOutput(t *testing.T) {
	b := NewBuilder("t1", "u1", "s1", "q")
	end := b.Start(domain.SpanQueryPrepare, map[string]any{"raw": "q"})
	end(map[string]any{"prepared": "q"}, nil)

	tr := b.Finish(domain.StatusOK, "prompt", 42, false, false)
	require.Len(t, tr.Spans, 1)
	require.Equal(t, domain.SpanQueryPrepare, tr.Spans[0].Name)
	require.False(t, tr.Spans[0].End.Before(tr.Spans[0].Start))
	require.Empty(t, tr.Spans[0].Err)
}

func TestBuilderRecordsSpanError(t *testing.T) {
	b := NewBuilder("t1", "u1", "s1", "q")
	end := b.Start(domain.SpanRerank, nil)
	end(nil, errors.New("timeout"))
	tr := b.Finish(domain.StatusErrored, "", 0, true, false)
	require.Equal(t, "timeout", tr.Spans[0].Err)
	require.True(t, tr.RerankFailed)
}

func TestBuilderAttachesCandidates(t *testing.T) {
	b := NewBuilder("t1", "u1", "s1", "q")
	end := b.Start(domain.SpanDenseRetrieve, nil)
	b.AttachCandidates(domain.SpanDenseRetrieve, []domain.RetrievalResult{{ChunkID: "a"}})
	end(nil, nil)
	tr := b.Finish(domain.StatusOK, "", 0, false, false)
	require.Len(t, tr.Spans[0].Candidate, 1)
}

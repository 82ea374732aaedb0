package assembler

import (
	"strings"
	"testing"

	"cloudfuze.com/retriever/internal/retriever/domain"
	"github.com/stretchr/testify/require"
)

func TestAssembleRespectsBudget(t *testing.T) {
	var cands []domain.RetrievalResult
	for i := 0; i < 20; i++ {
		cands = append(cands, domain.RetrievalResult{
			ChunkID:    strings.Repeat("x", 1) + string(rune('a'+i)),
			Text:       strings.Repeat("word ", 200),
			Metadata:   domain.Metadata{"source_type": "document", "file_name": "doc.pdf", "source_path": "/a"},
			FinalScore: float64(20 - i),
		})
	}
	got := Assemble(cands, 100, HeuristicTokenizer{})
	require.LessOrEqual(t, got.TokenCount, 100)
}

func TestAssembleEscapesBraces(t *testing.T) {
	cands := []domain.RetrievalResult{
		{ChunkID: "a", Text: `use {variable} in templates`, Metadata: domain.Metadata{"source_type": "document", "file_name": "f.pdf"}, FinalScore: 1},
	}
	got := Assemble(cands, 4000, HeuristicTokenizer{})
	require.Contains(t, got.Context, "{{variable}}")
	require.NotContains(t, got.Context, "{variable}")
}

func TestAssembleDedupKeepsHighestScored(t *testing.T) {
	cands := []domain.RetrievalResult{
		{ChunkID: "low", Text: "same content here", Metadata: domain.Metadata{"source_path": "/a", "file_name": "a.pdf"}, FinalScore: 0.2},
		{ChunkID: "high", Text: "same content here", Metadata: domain.Metadata{"source_path": "/a", "file_name": "a.pdf"}, FinalScore: 0.9},
	}
	got := Assemble(cands, 4000, HeuristicTokenizer{})
	require.Len(t, got.IncludedIDs, 1)
	require.Equal(t, "high", got.IncludedIDs[0])
}

func TestAssembleDedupIdempotent(t *testing.T) {
	cands := []domain.RetrievalResult{
		{ChunkID: "a", Text: "content one", Metadata: domain.Metadata{"source_path": "/a"}, FinalScore: 1},
		{ChunkID: "b", Text: "content two", Metadata: domain.Metadata{"source_path": "/b"}, FinalScore: 0.5},
	}
	first := dedup(cands)
	second := dedup(first)
	require.Equal(t, first, second)
}

func TestAssembleAllDuplicatesCollapseToOne(t *testing.T) {
	cands := []domain.RetrievalResult{
		{ChunkID: "a", Text: "same", Metadata: domain.Metadata{"source_path": "/a"}, FinalScore: 1},
		{ChunkID: "b", Text: "same", Metadata: domain.Metadata{"source_path": "/a"}, FinalScore: 0.5},
	}
	got := Assemble(cands, 4000, HeuristicTokenizer{})
	require.Equal(t, 1, len(got.IncludedIDs))
}

func TestAssembleNoSurvivorsIsEmpty(t *testing.T) {
	got := Assemble(nil, 4000, HeuristicTokenizer{})
	require.Empty(t, got.Context)
	require.Empty(t, got.IncludedIDs)
}

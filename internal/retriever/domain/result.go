package domain

// RetrievalResult is a per-candidate record that accumulates scores as it
// moves through fusion, boosting and reranking. final_score is required to
// be deterministic given identical inputs and configuration (spec §3).
type RetrievalResult struct {
	ChunkID     string
	Text        string
	Metadata    Metadata
	DenseScore  float64
	SparseScore float64
	RerankScore *float64 // nil when the reranker did not run or did not score this candidate
	Boost       float64
	FinalScore  float64
	Reasons     []string
}

// Citation is the user-facing attribution surfaced alongside an answer.
type Citation struct {
	FileName   string `json:"file_name"`
	URL        string `json:"url,omitempty"`
	SourceType string `json:"source_type"`
}

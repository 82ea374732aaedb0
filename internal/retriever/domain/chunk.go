// Package domain holds the data types shared by every retriever component:
// chunks, queries, conversation turns, retrieval results and traces.
package domain

import "time"

// SourceType enumerates the recognized values of metadata["source_type"].
type SourceType string

const (
	SourceBlog     SourceType = "blog"
	SourceDocument SourceType = "document"
	SourceEmail    SourceType = "email"
	SourcePage     SourceType = "page"
)

// Metadata is the heterogeneous key/value bag carried by a Chunk. Recognized
// keys are exposed through the accessor methods below, which fail soft
// (zero value, false) when a key is absent or of the wrong type rather than
// panicking — metadata comes from an external ingestion pipeline this
// package does not control.
type Metadata map[string]any

func (m Metadata) str(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m Metadata) SourceType() SourceType {
	s, _ := m.str("source_type")
	return SourceType(s)
}

func (m Metadata) SourcePath() string {
	s, _ := m.str("source_path")
	return s
}

func (m Metadata) FileName() string {
	s, _ := m.str("file_name")
	return s
}

func (m Metadata) FolderPath() string {
	s, _ := m.str("folder_path")
	return s
}

func (m Metadata) FileType() string {
	s, _ := m.str("file_type")
	return s
}

func (m Metadata) Tag() string {
	s, _ := m.str("tag")
	return s
}

func (m Metadata) DownloadURL() string {
	s, _ := m.str("download_url")
	return s
}

func (m Metadata) IsDownloadable() bool {
	v, ok := m["is_downloadable"]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ModifiedAt parses metadata["modified_at"] as an ISO-8601 timestamp. The
// second return value is false when the key is absent or unparseable, in
// which case callers must treat recency boosts as not applicable.
func (m Metadata) ModifiedAt() (time.Time, bool) {
	s, ok := m.str("modified_at")
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Chunk is an atomic, retrievable unit of text. The retriever holds these
// by read-only reference; it never mutates a Chunk it retrieves.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  Metadata
}

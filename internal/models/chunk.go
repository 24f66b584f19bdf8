// Package models defines core data structures for code chunks, queries, and search results.
package models

// CodeChunk is one ingested source file: its text and the embedding of that text.
// Chunks are immutable once created; the store only appends or clears.
type CodeChunk struct {
	ID        string    `json:"id,omitempty"`
	FilePath  string    `json:"filePath"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
}

// Clone returns a deep copy of the chunk, including its embedding.
func (c CodeChunk) Clone() CodeChunk {
	out := c
	if c.Embedding != nil {
		out.Embedding = make([]float32, len(c.Embedding))
		copy(out.Embedding, c.Embedding)
	}
	return out
}

// LoadRequest asks the service to ingest files and/or a directory.
type LoadRequest struct {
	Paths     []string `json:"paths,omitempty"`
	Directory string   `json:"directory,omitempty"`
}

// LoadFailure names a file that could not be ingested and why.
type LoadFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// LoadResponse summarises an ingestion batch.
type LoadResponse struct {
	BatchID  string        `json:"batch_id"`
	Loaded   int           `json:"loaded"`
	Failed   int           `json:"failed"`
	Failures []LoadFailure `json:"failures,omitempty"`
	Total    int           `json:"total_chunks"`
}

// StatusResponse describes the state of the store.
type StatusResponse struct {
	Chunks       int    `json:"chunks"`
	Dimensions   int    `json:"dimensions"`
	Backend      string `json:"backend"`
	BlobPath     string `json:"blob_path"`
	DiskUsage    int64  `json:"disk_usage_bytes"`
	LoadError    string `json:"load_error,omitempty"`
	PersistError string `json:"persist_error,omitempty"`
	Embedder     string `json:"embedder"`
	Provider     string `json:"provider,omitempty"`
}

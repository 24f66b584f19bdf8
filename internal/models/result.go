package models

// SearchResult represents a single search hit with its chunk and cosine score.
type SearchResult struct {
	Chunk CodeChunk `json:"chunk"`
	Score float64   `json:"score"`
	Rank  int       `json:"rank"`
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	Query     string          `json:"query"`
}

// AskResponse carries the provider's answer and the context it was given.
type AskResponse struct {
	Answer   string          `json:"answer"`
	Provider string          `json:"provider"`
	Model    string          `json:"model,omitempty"`
	Context  []*SearchResult `json:"context,omitempty"`
	Prompt   string          `json:"-"`
}

package models

import "fmt"

// DefaultTopK is the number of results returned when a query does not set one.
const DefaultTopK = 3

// MaxTopK caps the number of results a single query may request.
const MaxTopK = 50

// SearchQuery represents a similarity search request.
type SearchQuery struct {
	Query    string  `json:"query"`
	TopK     int     `json:"top_k,omitempty"`
	MinScore float64 `json:"min_score,omitempty"` // results scoring below this are dropped
}

// Validate ensures the search query has valid fields and sets defaults.
// Returns an error if the query is empty; otherwise normalizes TopK.
func (q *SearchQuery) Validate() error {
	return q.ValidateWith(DefaultTopK, MaxTopK)
}

// ValidateWith is Validate with caller-supplied default and maximum TopK.
func (q *SearchQuery) ValidateWith(defaultTopK, maxTopK int) error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	if maxTopK <= 0 {
		maxTopK = MaxTopK
	}
	if q.TopK <= 0 {
		q.TopK = defaultTopK
	}
	if q.TopK > maxTopK {
		q.TopK = maxTopK
	}
	return nil
}

// AskRequest is a question for the chat provider, optionally augmented with code context.
type AskRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
	// NoContext skips retrieval and sends the question as-is.
	NoContext bool `json:"no_context,omitempty"`
}

// Validate rejects empty questions.
func (r *AskRequest) Validate() error {
	if r.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	return nil
}

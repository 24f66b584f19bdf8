package vector

import (
	"encoding/json"
	"fmt"

	"github.com/hyperjump/codectx/internal/models"
)

// encodeChunks serializes the collection as one JSON array of chunk records.
// An empty collection encodes as "[]".
func encodeChunks(chunks []models.CodeChunk) ([]byte, error) {
	if chunks == nil {
		chunks = []models.CodeChunk{}
	}
	data, err := json.Marshal(chunks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chunks: %w", err)
	}
	return data, nil
}

// decodeChunks parses a blob written by encodeChunks. A JSON null decodes as empty.
func decodeChunks(data []byte) ([]models.CodeChunk, error) {
	var chunks []models.CodeChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		return nil, fmt.Errorf("failed to decode chunks: %w", err)
	}
	if chunks == nil {
		chunks = []models.CodeChunk{}
	}
	return chunks, nil
}

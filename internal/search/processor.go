package search

import (
	"fmt"

	"github.com/hyperjump/codectx/internal/config"
	"github.com/hyperjump/codectx/internal/models"
)

// ProcessQuery validates the query and applies the configured TopK default and cap.
// Validation failures wrap ErrInvalidQuery.
func ProcessQuery(query *models.SearchQuery, cfg *config.SearchConfig) error {
	var err error
	if cfg != nil {
		err = query.ValidateWith(cfg.DefaultTopK, cfg.MaxTopK)
	} else {
		err = query.Validate()
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if query.MinScore == 0 && cfg != nil {
		query.MinScore = cfg.MinScore
	}
	return nil
}

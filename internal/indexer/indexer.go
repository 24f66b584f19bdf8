package indexer

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/vector"
)

// Indexer expands paths, loads the files and appends the chunks to a vector store.
type Indexer struct {
	loader     *Loader
	store      *vector.Store
	extensions []string
	logger     *zap.Logger // optional
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithIndexerLogger sets a logger for expansion failures.
func WithIndexerLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer. extensions filters files found by walking directories;
// explicitly named files are always loaded.
func NewIndexer(loader *Loader, store *vector.Store, extensions []string, opts ...IndexerOption) *Indexer {
	idx := &Indexer{loader: loader, store: store, extensions: extensions}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Index loads req.Paths and every matching file under req.Directory, adds the resulting
// chunks to the store and summarises the batch.
func (idx *Indexer) Index(ctx context.Context, req *models.LoadRequest) *models.LoadResponse {
	var files []string
	var expandFailures []*FileError
	expand := func(p string) {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			files = append(files, p)
			return
		}
		found, err := CollectFiles(p, idx.extensions)
		if err != nil {
			expandFailures = append(expandFailures, &FileError{Path: p, Err: err})
			if idx.logger != nil {
				idx.logger.Warn("failed to walk directory", zap.String("path", p), zap.Error(err))
			}
			return
		}
		files = append(files, found...)
	}
	for _, p := range req.Paths {
		expand(p)
	}
	if req.Directory != "" {
		expand(req.Directory)
	}

	report := idx.loader.LoadFilesReport(ctx, files)
	report.Failures = append(expandFailures, report.Failures...)
	if len(report.Chunks) > 0 {
		idx.store.AddChunks(ctx, report.Chunks)
	}

	resp := &models.LoadResponse{
		BatchID: report.BatchID,
		Loaded:  len(report.Chunks),
		Failed:  len(report.Failures),
		Total:   idx.store.Len(),
	}
	for _, f := range report.Failures {
		resp.Failures = append(resp.Failures, models.LoadFailure{Path: f.Path, Error: f.Err.Error()})
	}
	return resp
}

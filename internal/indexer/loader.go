// Package indexer turns source files into embedded code chunks and feeds them to the vector store.
package indexer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/codectx/internal/embedding"
	"github.com/hyperjump/codectx/internal/fileid"
	"github.com/hyperjump/codectx/internal/models"
)

var (
	// ErrNotText is returned for files that contain NUL bytes or invalid UTF-8.
	ErrNotText = errors.New("file is not valid UTF-8 text")
	// ErrTooLarge is returned for files above the loader's size limit.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// FileError records why one file in a batch was skipped.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// LoadReport is the outcome of one LoadFiles batch.
type LoadReport struct {
	BatchID  string
	Chunks   []models.CodeChunk
	Failures []*FileError
}

// Loader reads files and embeds their full text, one chunk per file.
type Loader struct {
	embedder    embedding.Embedder
	maxFileSize int64
	logger      *zap.Logger // optional; when set, logs per-file events
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets a logger for skipped files and batch summaries.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) { ld.logger = l }
}

// WithMaxFileSize skips files larger than n bytes. Zero means no limit.
func WithMaxFileSize(n int64) LoaderOption {
	return func(ld *Loader) { ld.maxFileSize = n }
}

// NewLoader creates a loader that embeds with embedder.
func NewLoader(embedder embedding.Embedder, opts ...LoaderOption) *Loader {
	ld := &Loader{embedder: embedder}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// LoadFiles reads and embeds each path, returning chunks in input order. Files that cannot
// be read, are not text, or fail to embed are logged and skipped; the batch never fails as a whole.
func (ld *Loader) LoadFiles(ctx context.Context, paths []string) []models.CodeChunk {
	return ld.LoadFilesReport(ctx, paths).Chunks
}

// LoadFilesReport is LoadFiles that also reports which files were skipped and why.
// Once ctx is done, every remaining path is reported with the context error.
func (ld *Loader) LoadFilesReport(ctx context.Context, paths []string) *LoadReport {
	report := &LoadReport{
		BatchID: uuid.New().String(),
		Chunks:  make([]models.CodeChunk, 0, len(paths)),
	}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, &FileError{Path: path, Err: err})
			if ld.logger != nil {
				ld.logger.Warn("skipping file",
					zap.String("batch_id", report.BatchID),
					zap.String("path", path),
					zap.Error(err),
				)
			}
			continue
		}
		chunk, err := ld.loadFile(ctx, path)
		if err != nil {
			report.Failures = append(report.Failures, &FileError{Path: path, Err: err})
			if ld.logger != nil {
				ld.logger.Warn("skipping file",
					zap.String("batch_id", report.BatchID),
					zap.String("path", path),
					zap.Error(err),
				)
			}
			continue
		}
		report.Chunks = append(report.Chunks, chunk)
		if ld.logger != nil {
			ld.logger.Debug("file embedded",
				zap.String("batch_id", report.BatchID),
				zap.String("path", path),
				zap.Int("bytes", len(chunk.Content)),
			)
		}
	}
	if ld.logger != nil {
		ld.logger.Info("load batch finished",
			zap.String("batch_id", report.BatchID),
			zap.Int("files", len(paths)),
			zap.Int("chunks", len(report.Chunks)),
			zap.Int("failed", len(report.Failures)),
		)
	}
	return report
}

func (ld *Loader) loadFile(ctx context.Context, path string) (models.CodeChunk, error) {
	content, err := ReadText(path, ld.maxFileSize)
	if err != nil {
		return models.CodeChunk{}, err
	}
	emb, err := ld.embedder.Embed(ctx, content)
	if err != nil {
		return models.CodeChunk{}, fmt.Errorf("embed: %w", err)
	}
	if err := embedding.ValidateVector(emb); err != nil {
		return models.CodeChunk{}, fmt.Errorf("embed: %w", err)
	}
	return models.CodeChunk{
		ID:        fileid.ContentID(content),
		FilePath:  path,
		Content:   content,
		Embedding: emb,
	}, nil
}

// ReadText reads a regular file as UTF-8 text. Directories, files above maxSize (when
// maxSize > 0), and content with NUL bytes or invalid UTF-8 are rejected.
func ReadText(path string, maxSize int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", path)
	}
	var r io.Reader = f
	if maxSize > 0 {
		if info.Size() > maxSize {
			return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, info.Size())
		}
		r = io.LimitReader(f, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxSize)
	}
	if bytes.IndexByte(data, 0) >= 0 || !utf8.Valid(data) {
		return "", ErrNotText
	}
	return string(data), nil
}

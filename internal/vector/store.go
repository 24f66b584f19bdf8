// Package vector holds the code-chunk collection and answers similarity queries over it.
package vector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/codectx/internal/embedding"
	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/storage"
)

// DefaultBlobName is the blob the store persists to when none is configured.
const DefaultBlobName = "vectorStore.json"

// DefaultWarnSize is the serialized size above which every persist logs a warning.
const DefaultWarnSize = 64 << 20

// Store is an ordered, append-only collection of code chunks persisted as a single blob.
// Every mutation rewrites the whole blob while holding the write lock, so the blob
// always reflects a state the collection actually passed through.
type Store struct {
	mu         sync.RWMutex
	chunks     []models.CodeChunk
	blobs      storage.BlobStore
	name       string
	embedder   embedding.Embedder
	logger     *zap.Logger
	warnSize   int
	loadErr    error
	persistErr error
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for load and persist failures.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWarnSize sets the serialized size in bytes above which persisting logs a warning.
// Zero or negative disables the warning.
func WithWarnSize(n int) StoreOption {
	return func(s *Store) {
		s.warnSize = n
	}
}

// NewStore creates a store backed by the named blob and loads it immediately.
// A missing blob yields an empty store. Any other load failure is logged, recorded
// in LoadErr, and the store starts empty.
func NewStore(ctx context.Context, blobs storage.BlobStore, name string, embedder embedding.Embedder, opts ...StoreOption) (*Store, error) {
	if blobs == nil {
		return nil, errors.New("vector store: blob store is required")
	}
	if embedder == nil {
		return nil, errors.New("vector store: embedder is required")
	}
	if name == "" {
		name = DefaultBlobName
	}
	s := &Store{
		chunks:   []models.CodeChunk{},
		blobs:    blobs,
		name:     name,
		embedder: embedder,
		logger:   zap.NewNop(),
		warnSize: DefaultWarnSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) {
	data, err := s.blobs.Read(ctx, s.name)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("no persisted vector store, starting empty", zap.String("location", s.Location()))
		return
	}
	if err != nil {
		s.loadErr = err
		s.logger.Error("failed to load vector store", zap.String("location", s.Location()), zap.Error(err))
		return
	}
	chunks, err := decodeChunks(data)
	if err != nil {
		s.loadErr = err
		s.logger.Error("failed to parse vector store", zap.String("location", s.Location()), zap.Error(err))
		return
	}
	s.chunks = chunks
	s.logger.Info("loaded vector store",
		zap.String("location", s.Location()),
		zap.Int("chunks", len(chunks)),
	)
}

// AddChunks appends chunks in order and persists the full collection. Duplicates are kept.
// Chunks whose embedding holds NaN or an infinity are dropped with a warning, since they
// could never be scored and would make every later write fail. Persistence failures are logged and exposed through PersistErr; the in-memory
// collection is updated either way.
func (s *Store) AddChunks(ctx context.Context, chunks []models.CodeChunk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dims := s.dimensionsLocked()
	for _, c := range chunks {
		if err := embedding.ValidateVector(c.Embedding); err != nil {
			s.logger.Warn("dropping chunk with unusable embedding",
				zap.String("path", c.FilePath),
				zap.Error(err),
			)
			continue
		}
		if dims == 0 {
			dims = len(c.Embedding)
		} else if len(c.Embedding) != dims {
			s.logger.Warn("chunk embedding dimensionality differs from store; it will never match queries",
				zap.String("path", c.FilePath),
				zap.Int("dimensions", len(c.Embedding)),
				zap.Int("store_dimensions", dims),
			)
		}
		s.chunks = append(s.chunks, c.Clone())
	}
	s.persistLocked(ctx)
}

// Clear removes every chunk and persists the empty collection. Clearing an empty store is a no-op
// apart from the write.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = []models.CodeChunk{}
	s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	data, err := encodeChunks(s.chunks)
	if err == nil {
		if s.warnSize > 0 && len(data) > s.warnSize {
			s.logger.Warn("vector store blob is large; every write rewrites it in full",
				zap.Int("bytes", len(data)),
				zap.Int("chunks", len(s.chunks)),
			)
		}
		err = s.blobs.Write(ctx, s.name, data)
	}
	if err != nil {
		s.persistErr = fmt.Errorf("persist vector store: %w", err)
		s.logger.Error("failed to persist vector store",
			zap.String("location", s.Location()),
			zap.Int("chunks", len(s.chunks)),
			zap.Error(err),
		)
		return
	}
	s.persistErr = nil
}

// Search embeds query and returns up to topK chunks ordered by descending cosine similarity.
// Ties keep insertion order. Chunks whose similarity is undefined (zero magnitude or a
// dimensionality different from the query) are never returned. topK <= 0 yields no results.
// Embedding failures, including an empty query, are returned.
func (s *Store) Search(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	q, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return s.SearchVector(q, topK), nil
}

// SearchVector ranks the collection against an already-embedded query.
func (s *Store) SearchVector(query []float32, topK int) []models.SearchResult {
	if topK <= 0 {
		return []models.SearchResult{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, 0, len(s.chunks))
	for i := range s.chunks {
		sim := CosineSimilarity(query, s.chunks[i].Embedding)
		if !Scorable(sim) {
			continue
		}
		scores = append(scores, scored{idx: i, score: sim})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if topK > len(scores) {
		topK = len(scores)
	}
	results := make([]models.SearchResult, topK)
	for i := 0; i < topK; i++ {
		results[i] = models.SearchResult{
			Chunk: s.chunks[scores[i].idx].Clone(),
			Score: scores[i].score,
			Rank:  i + 1,
		}
	}
	return results
}

// Len returns the number of chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Chunks returns a copy of the collection in insertion order.
func (s *Store) Chunks() []models.CodeChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CodeChunk, len(s.chunks))
	for i, c := range s.chunks {
		out[i] = c.Clone()
	}
	return out
}

// Dimensions returns the embedding length of the first chunk, or 0 when empty.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensionsLocked()
}

func (s *Store) dimensionsLocked() int {
	if len(s.chunks) == 0 {
		return 0
	}
	return len(s.chunks[0].Embedding)
}

// Location describes where the store's blob lives.
func (s *Store) Location() string {
	return s.blobs.Location(s.name)
}

// BlobName returns the name of the blob the store persists to.
func (s *Store) BlobName() string {
	return s.name
}

// LoadErr returns the error that prevented loading persisted state, if any.
// A missing blob is not an error.
func (s *Store) LoadErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// PersistErr returns the error from the most recent persist, or nil if it succeeded.
func (s *Store) PersistErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persistErr
}

// Status summarises the store for status reporting. Disk usage is best effort and
// reported as 0 when it cannot be measured.
func (s *Store) Status() *models.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := &models.StatusResponse{
		Chunks:     len(s.chunks),
		Dimensions: s.dimensionsLocked(),
		Backend:    s.blobs.Backend(),
		BlobPath:   s.blobs.Location(s.name),
	}
	if usage, err := storage.LocalUsage(s.blobs, s.name); err == nil {
		resp.DiskUsage = usage
	} else {
		s.logger.Debug("disk usage unavailable", zap.String("blob", s.name), zap.Error(err))
	}
	if s.loadErr != nil {
		resp.LoadError = s.loadErr.Error()
	}
	if s.persistErr != nil {
		resp.PersistError = s.persistErr.Error()
	}
	return resp
}

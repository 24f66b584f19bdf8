package e2e

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/codectx/internal/config"
	"github.com/hyperjump/codectx/internal/embedding"
	"github.com/hyperjump/codectx/internal/indexer"
	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/search"
	"github.com/hyperjump/codectx/internal/storage"
	"github.com/hyperjump/codectx/internal/vector"
)

const (
	e2eFiles      = 60
	e2eDimensions = 64
)

func TestE2E_LoadReloadSearch(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	corpus := BuildCorpus(e2eFiles)
	if err := corpus.Write(srcDir); err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	embedder := embedding.WithCache(embedding.NewMockEmbedder(e2eDimensions), 128, 0)
	defer embedder.Close()
	blobs, err := storage.NewSQLiteStore(filepath.Join(dir, "data", "blobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer blobs.Close()

	store, err := vector.NewStore(ctx, blobs, vector.DefaultBlobName, embedder)
	if err != nil {
		t.Fatal(err)
	}
	idx := indexer.NewIndexer(indexer.NewLoader(embedder), store, config.DefaultExtensions)
	resp := idx.Index(ctx, &models.LoadRequest{Directory: srcDir})
	if resp.Loaded != e2eFiles || resp.Failed != 0 {
		t.Fatalf("loaded %d (failed %d), want %d: %+v", resp.Loaded, resp.Failed, e2eFiles, resp.Failures)
	}

	// Search against a store rebuilt from the persisted blob.
	reloaded, err := vector.NewStore(ctx, blobs, vector.DefaultBlobName, embedder)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != e2eFiles {
		t.Fatalf("reloaded %d chunks, want %d", reloaded.Len(), e2eFiles)
	}
	engine := search.NewEngine(reloaded, nil, &config.SearchConfig{DefaultTopK: 3, MaxTopK: 10})

	for _, tc := range corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			got, err := engine.Search(ctx, &models.SearchQuery{Query: tc.Query})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			if got.Total != 3 {
				t.Fatalf("got %d results, want 3", got.Total)
			}
			top := got.Results[0]
			if !strings.HasSuffix(top.Chunk.FilePath, tc.Expected) {
				t.Errorf("top result %s, want %s", top.Chunk.FilePath, tc.Expected)
			}
			if top.Score < 0.999 {
				t.Errorf("exact-content score %f, want ~1", top.Score)
			}
		})
	}

	for _, f := range corpus.Skipped {
		for _, c := range reloaded.Chunks() {
			if strings.HasSuffix(c.FilePath, f.RelPath) {
				t.Errorf("%s should not have been ingested", f.RelPath)
			}
		}
	}
}

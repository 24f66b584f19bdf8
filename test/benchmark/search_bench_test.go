package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyperjump/codectx/internal/embedding"
	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/search"
	"github.com/hyperjump/codectx/internal/storage"
	"github.com/hyperjump/codectx/internal/vector"
)

const benchDims = 384

func newBenchStore(b *testing.B, n int) (*vector.Store, embedding.Embedder) {
	b.Helper()
	ctx := context.Background()
	embedder := embedding.NewMockEmbedder(benchDims)
	blobs, err := storage.NewFileStore(b.TempDir())
	if err != nil {
		b.Fatal(err)
	}
	store, err := vector.NewStore(ctx, blobs, vector.DefaultBlobName, embedder)
	if err != nil {
		b.Fatal(err)
	}
	chunks := make([]models.CodeChunk, n)
	for i := range chunks {
		content := fmt.Sprintf("func handler%d(w http.ResponseWriter) {}", i)
		v, err := embedder.Embed(ctx, content)
		if err != nil {
			b.Fatal(err)
		}
		chunks[i] = models.CodeChunk{FilePath: fmt.Sprintf("/src/h%d.go", i), Content: content, Embedding: v}
	}
	store.AddChunks(ctx, chunks)
	return store, embedder
}

func BenchmarkStoreSearchVector(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		b.Run(fmt.Sprintf("chunks=%d", n), func(b *testing.B) {
			store, embedder := newBenchStore(b, n)
			query, _ := embedder.Embed(context.Background(), "http handler")
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = store.SearchVector(query, 10)
			}
		})
	}
}

func BenchmarkStoreAddChunksPersist(b *testing.B) {
	store, embedder := newBenchStore(b, 1000)
	ctx := context.Background()
	v, _ := embedder.Embed(ctx, "extra")
	chunk := []models.CodeChunk{{FilePath: "/src/extra.go", Content: "extra", Embedding: v}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.AddChunks(ctx, chunk)
	}
}

func BenchmarkBuildPrompt(b *testing.B) {
	results := make([]*models.SearchResult, 5)
	for i := range results {
		results[i] = &models.SearchResult{Chunk: models.CodeChunk{FilePath: fmt.Sprintf("/src/f%d.go", i), Content: "package f\n\nfunc F() {}\n"}}
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = search.BuildPrompt("what does F do?", results)
	}
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := embedding.NewMockEmbedder(benchDims)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

func BenchmarkCachedEmbedder_Embed(b *testing.B) {
	e := embedding.WithCache(embedding.NewMockEmbedder(benchDims), 100, 0)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLiteStore_ReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "blobs.db")
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, err := store.Read(ctx, "vectorStore.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Write(ctx, "vectorStore.json", []byte(`[{"a":1}]`)); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, "vectorStore.json", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	got, err := store.Read(ctx, "vectorStore.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "[]" {
		t.Errorf("got %q", got)
	}
	if !strings.HasSuffix(store.Location("vectorStore.json"), "#vectorStore.json") {
		t.Errorf("Location = %s", store.Location("vectorStore.json"))
	}
}

func TestSQLiteStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blobs.db")
	ctx := context.Background()
	store, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.Read(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("after reopen: %q, %v", got, err)
	}
}

func TestSQLiteStore_EmptyBlob(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "blobs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()
	if err := store.Write(ctx, "empty", nil); err != nil {
		t.Fatal(err)
	}
	got, err := store.Read(ctx, "empty")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %q", got)
	}
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStore_ReadWrite(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "store")
	store, err := NewFileStore(root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if _, err := store.Read(ctx, "vectorStore.json"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Write(ctx, "vectorStore.json", []byte(`[1]`)); err != nil {
		t.Fatal(err)
	}
	got, err := store.Read(ctx, "vectorStore.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "[1]" {
		t.Errorf("got %q", got)
	}

	if err := store.Write(ctx, "vectorStore.json", []byte(`[]`)); err != nil {
		t.Fatal(err)
	}
	got, _ = store.Read(ctx, "vectorStore.json")
	if string(got) != "[]" {
		t.Errorf("overwrite: got %q", got)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
	if store.Location("vectorStore.json") != filepath.Join(root, "vectorStore.json") {
		t.Errorf("Location = %s", store.Location("vectorStore.json"))
	}
}

func TestFileStore_WriteFailureKeepsPrevious(t *testing.T) {
	root := t.TempDir()
	store, _ := NewFileStore(root)
	ctx := context.Background()
	if err := store.Write(ctx, "blob", []byte("v1")); err != nil {
		t.Fatal(err)
	}
	// A directory in place of the target makes the rename fail.
	if err := os.Mkdir(filepath.Join(root, "dir-blob"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "dir-blob", "x"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, "dir-blob", []byte("v2")); err == nil {
		t.Fatal("expected error writing over a non-empty directory")
	}
	got, err := store.Read(ctx, "blob")
	if err != nil || string(got) != "v1" {
		t.Errorf("previous blob changed: %q, %v", got, err)
	}
}

func TestFileStore_cancelled(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := store.Write(ctx, "blob", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Write: expected context.Canceled, got %v", err)
	}
	if _, err := store.Read(ctx, "blob"); !errors.Is(err, context.Canceled) {
		t.Errorf("Read: expected context.Canceled, got %v", err)
	}
}

func TestNewFileStore_requiresRoot(t *testing.T) {
	if _, err := NewFileStore(""); err == nil {
		t.Error("expected error for empty root")
	}
}

func TestNew_backends(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := New(ctx, Options{Root: dir})
	if err != nil {
		t.Fatal(err)
	}
	if fs.Backend() != BackendFile {
		t.Errorf("default backend = %s", fs.Backend())
	}

	sq, err := New(ctx, Options{Backend: BackendSQLite, Root: dir})
	if err != nil {
		t.Fatal(err)
	}
	defer sq.Close()
	if sq.Backend() != BackendSQLite {
		t.Errorf("backend = %s", sq.Backend())
	}
	if _, err := os.Stat(filepath.Join(dir, "blobs.db")); err != nil {
		t.Errorf("default sqlite path not created: %v", err)
	}

	if _, err := New(ctx, Options{Backend: "tape"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := New(ctx, Options{Backend: BackendS3}); err == nil {
		t.Error("expected error for s3 without a bucket")
	}
}

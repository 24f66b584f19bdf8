package indexer

import (
	"path/filepath"
	"testing"
)

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		ext     string
		allowed []string
		want    bool
	}{
		{".go", []string{".go", ".py"}, true},
		{".GO", []string{".go"}, true},
		{".py", []string{"go", "py"}, true},
		{".exe", []string{".go"}, false},
		{"", []string{".go"}, false},
		{".tsx", []string{".ts", ".tsx"}, true},
	}
	for _, tt := range tests {
		got := extensionAllowed(tt.ext, tt.allowed)
		if got != tt.want {
			t.Errorf("extensionAllowed(%q, %v) = %v, want %v", tt.ext, tt.allowed, got, tt.want)
		}
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", []byte("package main"))
	writeFile(t, dir, "pkg/util.go", []byte("package pkg"))
	writeFile(t, dir, "README.txt", []byte("readme"))
	writeFile(t, dir, "node_modules/dep/index.js", []byte("module.exports = 1"))
	writeFile(t, dir, ".git/config.go", []byte("nope"))

	files, err := CollectFiles(dir, []string{".go", ".js"})
	if err != nil {
		t.Fatal(err)
	}
	abs, _ := filepath.Abs(dir)
	want := []string{filepath.Join(abs, "main.go"), filepath.Join(abs, "pkg", "util.go")}
	if len(files) != len(want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}

	all, err := CollectFiles(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("no filter: got %v", all)
	}
}

func TestCollectFiles_notDirectory(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "a.go", []byte("package a"))
	if _, err := CollectFiles(f, nil); err == nil {
		t.Error("expected error for file")
	}
	if _, err := CollectFiles(filepath.Join(dir, "missing"), nil); err == nil {
		t.Error("expected error for missing dir")
	}
}

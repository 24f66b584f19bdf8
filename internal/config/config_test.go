package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  backend: sqlite
  root: "./data"
embedding:
  cache_ttl: 10m
provider:
  kind: ollama
  model: qwen2.5-coder:3b
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Root != filepath.Join(dir, "data") {
		t.Errorf("root = %s", cfg.Storage.Root)
	}
	if cfg.Embedding.CacheTTL != 10*time.Minute {
		t.Errorf("cache_ttl = %s", cfg.Embedding.CacheTTL)
	}
	if cfg.Provider.Kind != "ollama" || cfg.Provider.Model != "qwen2.5-coder:3b" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("server: [1, 2"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := []struct {
		in   string
		want string
	}{
		{"/abs/path", "/abs/path"},
		{"./rel", "/cfg/rel"},
		{".", "/cfg"},
		{"~/.codectx", filepath.Join(home, ".codectx")},
		{".codectx", filepath.Join(home, ".codectx")},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in, "/cfg"); got != tt.want {
			t.Errorf("expandPath(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8765 {
		t.Errorf("default server: %+v", cfg.Server)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.BlobName != "vectorStore.json" {
		t.Errorf("default storage: %+v", cfg.Storage)
	}
	if cfg.Search.DefaultTopK != 3 {
		t.Errorf("default top k: got %d", cfg.Search.DefaultTopK)
	}
	if cfg.Embedding.Provider != "mock" || cfg.Embedding.Dimensions != 384 {
		t.Errorf("default embedding: %+v", cfg.Embedding)
	}
	if len(cfg.Ingest.Extensions) != len(DefaultExtensions) || cfg.Ingest.Extensions[0] != ".go" {
		t.Errorf("ingest extensions: got %v", cfg.Ingest.Extensions)
	}
	if cfg.Provider.Kind != "" {
		t.Errorf("provider should be disabled by default, got %q", cfg.Provider.Kind)
	}
}

func TestApplyDefaults_openaiDimensionsLeftToModel(t *testing.T) {
	cfg := &Config{Embedding: EmbeddingConfig{Provider: "openai"}}
	ApplyDefaults(cfg)
	if cfg.Embedding.Dimensions != 0 {
		t.Errorf("openai dimensions should be chosen from the model, got %d", cfg.Embedding.Dimensions)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if !filepath.IsAbs(cfg.Storage.Root) {
		t.Errorf("root should be absolute, got %s", cfg.Storage.Root)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{Root: "/tmp/codectx"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 || loaded.Storage.Root != "/tmp/codectx" {
		t.Errorf("loaded: %+v", loaded)
	}
}

package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/provider"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		Query:     "open database",
		QueryTime: 42,
		Total:     2,
		Results: []*models.SearchResult{
			{Rank: 1, Score: 0.91, Chunk: models.CodeChunk{FilePath: "/src/db.go", Content: "package db\n\nfunc Open() {}\n"}},
			{Rank: 2, Score: 0.5, Chunk: models.CodeChunk{FilePath: "/src/http.go", Content: "package http"}},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	response := sampleResponse()
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, response, OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != response.Query || decoded.QueryTime != response.QueryTime {
		t.Errorf("decoded query=%q query_time=%d", decoded.Query, decoded.QueryTime)
	}
	if len(decoded.Results) != 2 || decoded.Results[0].Chunk.FilePath != "/src/db.go" {
		t.Errorf("decoded results: %+v", decoded.Results)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Found 2 results in 42ms", "Rank: 1 | Score: 0.9100", "File: /src/db.go", "func Open() {}", "package http\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSearchResults_TextTruncatesLongFiles(t *testing.T) {
	long := strings.Repeat("line\n", snippetLines+5)
	resp := &models.SearchResponse{Total: 1, Results: []*models.SearchResult{{Rank: 1, Chunk: models.CodeChunk{FilePath: "/big.go", Content: long}}}}
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(buf.String(), "line\n"); got != snippetLines {
		t.Errorf("printed %d lines, want %d", got, snippetLines)
	}
	if !strings.Contains(buf.String(), "...\n") {
		t.Error("expected truncation marker")
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	want := "1\t0.9100\t/src/db.go\n2\t0.5000\t/src/http.go\n"
	if buf.String() != want {
		t.Errorf("compact output = %q, want %q", buf.String(), want)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteAskResponse(t *testing.T) {
	resp := &models.AskResponse{
		Answer:   "Use db.Open.\n",
		Provider: "ollama",
		Model:    "deepseek-coder:1.3b",
		Context:  sampleResponse().Results,
	}
	var buf bytes.Buffer
	if err := WriteAskResponse(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Use db.Open.\n") || !strings.Contains(out, "Context (ollama/deepseek-coder:1.3b)") || !strings.Contains(out, "/src/http.go") {
		t.Errorf("unexpected ask output:\n%s", out)
	}

	buf.Reset()
	if err := WriteAskResponse(&buf, resp, OutputCompact); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Use db.Open.\n" {
		t.Errorf("compact ask output = %q", buf.String())
	}
}

func TestWriteLoadResponse(t *testing.T) {
	resp := &models.LoadResponse{Loaded: 3, Failed: 1, Total: 10, Failures: []models.LoadFailure{{Path: "/bin/app", Error: "not a text file"}}}
	var buf bytes.Buffer
	if err := WriteLoadResponse(&buf, resp, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Loaded 3 files (1 failed), store now holds 10 chunks") || !strings.Contains(out, "failed: /bin/app: not a text file") {
		t.Errorf("unexpected load output:\n%s", out)
	}
}

func TestWriteStatus(t *testing.T) {
	st := &models.StatusResponse{Chunks: 4, Dimensions: 384, Backend: "file", BlobPath: "/x/vectorStore.json", DiskUsage: 2048, Embedder: "mock", PersistError: "disk full"}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Chunks:      4", "2.0 KiB", "Save error:  disk full"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Provider:") {
		t.Error("provider line should be omitted when unset")
	}
}

func TestWriteModels(t *testing.T) {
	var buf bytes.Buffer
	list := []provider.Model{{ID: "gpt-4", Name: "gpt-4"}, {ID: "deepseek-coder:6.7b", Name: "DeepSeek Coder 6.7B"}}
	if err := WriteModels(&buf, list, OutputText); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "gpt-4\ndeepseek-coder:6.7b\tDeepSeek Coder 6.7B\n" {
		t.Errorf("models output = %q", buf.String())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KiB", 5 << 20: "5.0 MiB"}
	for n, want := range tests {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}

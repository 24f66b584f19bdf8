package vector

import (
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"scaled", []float32{1, 1}, []float32{3, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-2, 0}, -1},
		{"diagonal", []float32{1, 0}, []float32{1, 1}, 1 / math.Sqrt2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("CosineSimilarity = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_undefined(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
	}{
		{"zero a", []float32{0, 0}, []float32{1, 0}},
		{"zero b", []float32{1, 0}, []float32{0, 0}},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if !math.IsInf(got, -1) {
				t.Errorf("CosineSimilarity = %f, want -Inf", got)
			}
			if Scorable(got) {
				t.Error("undefined similarity should not be scorable")
			}
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	data, err := encodeChunks(nil)
	if err != nil || string(data) != "[]" {
		t.Fatalf("encode(nil) = %q, %v", data, err)
	}
	chunks, err := decodeChunks([]byte("null"))
	if err != nil || chunks == nil || len(chunks) != 0 {
		t.Errorf("decode(null) = %v, %v", chunks, err)
	}
	chunks, err = decodeChunks([]byte(`[{"filePath":"a.go","content":"package a","embedding":[0.5,1]}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].FilePath != "a.go" || chunks[0].Embedding[1] != 1 {
		t.Errorf("decoded %+v", chunks)
	}
	if _, err := decodeChunks([]byte(`{"filePath":"a.go"}`)); err == nil {
		t.Error("expected error for non-array document")
	}
}

package embedding

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted by New.
const (
	ProviderMock   = "mock"
	ProviderONNX   = "onnx"
	ProviderOpenAI = "openai"
)

// Options selects and configures an Embedder.
type Options struct {
	Provider   string
	ModelPath  string // onnx
	Model      string // openai
	BaseURL    string // openai
	APIKey     string // openai; falls back to OPENAI_API_KEY
	Dimensions int
	MaxTokens  int
	CacheSize  int
	CacheTTL   time.Duration
}

// New builds the Embedder named by opts.Provider and wraps it in a cache when
// opts.CacheSize > 0. The caller owns the result and must Close it.
func New(opts Options) (Embedder, error) {
	var (
		e   Embedder
		err error
	)
	switch opts.Provider {
	case "", ProviderMock:
		e = NewMockEmbedder(opts.Dimensions)
	case ProviderONNX:
		var onnx *ONNXEmbedder
		onnx, err = NewONNXEmbedder(opts.ModelPath, opts.Dimensions, opts.MaxTokens)
		if err == nil {
			e = onnx
		}
	case ProviderOpenAI:
		apiKey := opts.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		var oe *OpenAIEmbedder
		oe, err = NewOpenAIEmbedder(apiKey, opts.BaseURL, opts.Model, opts.Dimensions)
		if err == nil {
			e = oe
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s embedder: %w", opts.Provider, err)
	}
	return WithCache(e, opts.CacheSize, opts.CacheTTL), nil
}

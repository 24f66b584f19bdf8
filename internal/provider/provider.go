// Package provider sends prompts to chat-completion backends. Every supported backend
// speaks the OpenAI chat API, so one client type serves all kinds with per-kind defaults.
package provider

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Kind identifies a chat backend.
type Kind string

// Supported backends.
const (
	KindOpenAI   Kind = "openai"
	KindDeepSeek Kind = "deepseek"
	KindOllama   Kind = "ollama"
)

// ErrUnknownKind is returned for a provider name outside the supported set.
var ErrUnknownKind = errors.New("unknown provider")

// ErrEmptyResponse is returned when the backend answers with no choices.
var ErrEmptyResponse = errors.New("provider returned no choices")

// Kinds lists every supported backend.
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindDeepSeek, KindOllama}
}

// ParseKind maps a name (case-insensitive) to a Kind.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Model describes a model a backend can serve.
type Model struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider Kind   `json:"provider"`
}

// Client is the capability every backend offers.
type Client interface {
	SendMessage(ctx context.Context, prompt string) (string, error)
	GetModels(ctx context.Context) ([]Model, error)
	Kind() Kind
	Model() string
}

// Config configures a Client. Zero fields take the kind's defaults.
type Config struct {
	Kind        Kind
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

type kindDefaults struct {
	baseURL     string
	model       string
	temperature float32
	apiKeyEnv   string
}

var defaults = map[Kind]kindDefaults{
	KindOpenAI:   {baseURL: "https://api.openai.com/v1", model: "gpt-4", temperature: 0.7, apiKeyEnv: "OPENAI_API_KEY"},
	KindDeepSeek: {baseURL: "https://api.deepseek.com/v1", model: "deepseek-coder", temperature: 0.7, apiKeyEnv: "DEEPSEEK_API_KEY"},
	KindOllama:   {baseURL: "http://localhost:11434/v1", model: "deepseek-coder:1.3b", temperature: 0.3},
}

// withDefaults fills unset fields from the kind's defaults and the environment.
func (c Config) withDefaults() Config {
	d := defaults[c.Kind]
	if c.BaseURL == "" {
		c.BaseURL = d.baseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = d.model
	}
	if c.Temperature == 0 {
		c.Temperature = d.temperature
	}
	if c.APIKey == "" && d.apiKeyEnv != "" {
		c.APIKey = os.Getenv(d.apiKeyEnv)
	}
	return c
}

// New returns the Client for cfg.Kind.
func New(cfg Config) (Client, error) {
	if _, err := ParseKind(string(cfg.Kind)); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	switch cfg.Kind {
	case KindOpenAI:
		return newChatClient(cfg, []Model{
			{ID: "gpt-4", Name: "GPT-4", Provider: KindOpenAI},
			{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Provider: KindOpenAI},
		}), nil
	case KindDeepSeek:
		return newChatClient(cfg, []Model{
			{ID: "deepseek-chat", Name: "DeepSeek Chat", Provider: KindDeepSeek},
			{ID: "deepseek-coder", Name: "DeepSeek Coder", Provider: KindDeepSeek},
		}), nil
	case KindOllama:
		return newOllamaClient(cfg), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
}

package provider

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// chatClient talks to an OpenAI-compatible /chat/completions endpoint.
type chatClient struct {
	client  *openai.Client
	cfg     Config
	catalog []Model
	system  string
}

func newChatClient(cfg Config, catalog []Model) *chatClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = cfg.BaseURL
	return &chatClient{
		client:  openai.NewClientWithConfig(oc),
		cfg:     cfg,
		catalog: catalog,
	}
}

// SendMessage sends prompt as a single user message and returns the first choice.
func (c *chatClient) SendMessage(ctx context.Context, prompt string) (string, error) {
	var msgs []openai.ChatCompletionMessage
	if c.system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.cfg.Kind, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", c.cfg.Kind, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// GetModels returns the backend's static model catalogue.
func (c *chatClient) GetModels(ctx context.Context) ([]Model, error) {
	out := make([]Model, len(c.catalog))
	copy(out, c.catalog)
	return out, nil
}

func (c *chatClient) Kind() Kind { return c.cfg.Kind }

func (c *chatClient) Model() string { return c.cfg.Model }

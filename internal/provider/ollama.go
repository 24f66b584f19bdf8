package provider

import (
	"context"
	"regexp"
	"strings"
)

const ollamaSystemPrompt = "Answer with code in a single fenced code block. " +
	"Preserve every line break and indentation level exactly."

// ollamaFallbackModels is returned when the local server cannot be reached.
var ollamaFallbackModels = []Model{
	{ID: "deepseek-coder:1.3b", Name: "DeepSeek Coder 1.3B", Provider: KindOllama},
	{ID: "qwen2.5-coder:3b", Name: "Qwen2.5 Coder 3B", Provider: KindOllama},
	{ID: "deepseek-r1:1.5b", Name: "DeepSeek R1 1.5B", Provider: KindOllama},
	{ID: "deepseek-r1:7b", Name: "DeepSeek R1 7B", Provider: KindOllama},
	{ID: "llama2", Name: "Llama 2", Provider: KindOllama},
	{ID: "codellama", Name: "CodeLlama", Provider: KindOllama},
	{ID: "mistral", Name: "Mistral", Provider: KindOllama},
}

// ollamaClient is a chatClient against a local Ollama server. Small local models often
// drop code fences, so replies are normalised to contain one.
type ollamaClient struct {
	*chatClient
}

func newOllamaClient(cfg Config) *ollamaClient {
	c := newChatClient(cfg, ollamaFallbackModels)
	c.system = ollamaSystemPrompt
	return &ollamaClient{chatClient: c}
}

// SendMessage sends prompt and wraps the reply in a code fence if it has none.
func (c *ollamaClient) SendMessage(ctx context.Context, prompt string) (string, error) {
	raw, err := c.chatClient.SendMessage(ctx, prompt)
	if err != nil {
		return "", err
	}
	return EnsureCodeFence(raw), nil
}

// GetModels lists the models installed on the server, falling back to a
// default catalogue when the server is unreachable or reports none.
func (c *ollamaClient) GetModels(ctx context.Context) ([]Model, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil || len(list.Models) == 0 {
		return c.chatClient.GetModels(ctx)
	}
	out := make([]Model, 0, len(list.Models))
	for _, m := range list.Models {
		out = append(out, Model{ID: m.ID, Name: m.ID, Provider: KindOllama})
	}
	return out, nil
}

var fencedBlock = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*\\n.*?```")

// EnsureCodeFence returns raw unchanged if it already contains a fenced code block.
// Otherwise it strips stray fence markers and wraps the trimmed text in a fence
// labelled with the detected language.
func EnsureCodeFence(raw string) string {
	if fencedBlock.MatchString(raw) {
		return raw
	}
	code := strings.TrimSpace(strings.ReplaceAll(raw, "```", ""))
	return "```" + DetectLanguage(code) + "\n" + code + "\n```"
}

var languageMarkers = []struct {
	lang    string
	markers []string
}{
	{"go", []string{"package ", "func ", ":= "}},
	{"typescript", []string{"interface ", "type ", "declare "}},
	{"javascript", []string{"function", "const ", "let ", "=>"}},
	{"python", []string{"def ", "import ", "lambda "}},
	{"java", []string{"public class", "void ", "new "}},
}

// DetectLanguage guesses a fence label for code from keyword markers.
// Returns "text" when nothing matches.
func DetectLanguage(code string) string {
	for _, lm := range languageMarkers {
		for _, m := range lm.markers {
			if strings.Contains(code, m) {
				return lm.lang
			}
		}
	}
	return "text"
}

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tsinghua-lau/transgo/i18n"
)

// DefaultPromptTemplate is the user-prompt template applied when an AI
// configuration carries none. {text} is replaced with the input.
const DefaultPromptTemplate = "Translate the following text and output only the translation, without any explanation:\n\n{text}"

// AITranslator calls any OpenAI-compatible chat completions endpoint.
// BaseURL may or may not already end in /chat/completions.
type AITranslator struct {
	BaseURL        string
	APIKey         string
	Model          string
	PromptTemplate string

	client *http.Client
}

func NewAI(baseURL, apiKey, model, promptTemplate string) *AITranslator {
	return &AITranslator{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		Model:          model,
		PromptTemplate: promptTemplate,
		client:         makeHTTPClient("", RequestTimeout),
	}
}

func (a *AITranslator) ID() string { return AI }

func langName(code string) string {
	switch code {
	case "zh":
		return "Chinese"
	case "en":
		return "English"
	}
	return code
}

func (a *AITranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if a.BaseURL == "" || a.APIKey == "" || a.Model == "" {
		return "", &ConfigError{
			Provider: AI,
			Message:  i18n.T("AI translation requires a base URL, API key and model, add them in the settings"),
		}
	}

	tmpl := a.PromptTemplate
	if tmpl == "" {
		tmpl = DefaultPromptTemplate
	}
	systemPrompt := fmt.Sprintf(
		"You are a professional translator. Translate the user's text from %s to %s. Return only the translated text.",
		langName(from), langName(to))
	userPrompt := strings.ReplaceAll(tmpl, "{text}", text)

	body, err := buildChatRequest(a.Model, systemPrompt, userPrompt, 0.3)
	if err != nil {
		return "", &TransportError{Provider: AI, Err: err}
	}

	endpoint := strings.TrimRight(a.BaseURL, "/")
	if !strings.HasSuffix(endpoint, "/chat/completions") {
		endpoint += "/chat/completions"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Provider: AI, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.APIKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", transportError(AI, err)
	}
	defer resp.Body.Close()

	raw, err := readBody(resp.Body)
	if err != nil {
		return "", transportError(AI, err)
	}
	return parseChatResponse(raw, resp.StatusCode)
}

func buildChatRequest(model, systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		Stream:      false,
	}
	return json.Marshal(req)
}

// parseChatResponse extracts choices[0].message.content, preferring the
// endpoint's own error object when one is present.
func parseChatResponse(body []byte, status int) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &FormatError{Provider: AI}
	}

	if parsed.Error != nil && parsed.Error.Message != "" {
		return "", &ProviderError{
			Provider: AI,
			Code:     fmt.Sprintf("%d", status),
			Message:  fmt.Sprintf("%s: %s", i18n.T("AI translation error"), parsed.Error.Message),
		}
	}
	if status != http.StatusOK {
		return "", &ProviderError{
			Provider: AI,
			Code:     fmt.Sprintf("%d", status),
			Message:  fmt.Sprintf("%s: HTTP %d", i18n.T("AI translation error"), status),
		}
	}

	if len(parsed.Choices) > 0 {
		if out := strings.TrimSpace(parsed.Choices[0].Message.Content); out != "" {
			return out, nil
		}
	}
	return "", &FormatError{Provider: AI}
}

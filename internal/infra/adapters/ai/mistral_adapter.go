package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/SERG-KRUK/tgbot/internal/domain"
	"github.com/SERG-KRUK/tgbot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.CompletionAdapter = (*MistralAdapter)(nil)

// MistralAdapter implements adapter.CompletionAdapter using the Mistral
// Chat Completions API.
type MistralAdapter struct {
	apiKey string
	base   string // e.g., https://api.mistral.ai/v1
	model  string
	client *http.Client
}

func NewMistralAdapter(apiKey, model, baseURL string) (*MistralAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("mistral api key empty")
	}
	if model == "" {
		model = "mistral-medium-latest"
	}
	if baseURL == "" {
		baseURL = "https://api.mistral.ai/v1"
	}
	return &MistralAdapter{
		apiKey: apiKey,
		base:   baseURL,
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (m *MistralAdapter) ModelName() string { return m.model }

func (m *MistralAdapter) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		Temperature float64           `json:"temperature"`
		MaxTokens   int               `json:"max_tokens"`
	}{
		Model:       m.model,
		Messages:    []adapter.Message{{Role: "user", Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   2000,
	}

	b, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", domain.ErrProviderOverloaded
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: http %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decode: %v", domain.ErrProviderFailure, err)
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", fmt.Errorf("%w: no choice content", domain.ErrProviderFailure)
}

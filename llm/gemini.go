package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/corvid-labs/corvid/core"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient is a REST client for the Gemini embedding and generation
// endpoints. The API key is supplied per call so a credential pool can swap
// keys between attempts.
type GeminiClient struct {
	baseURL    string
	embedModel string
	chatModel  string
	client     *http.Client
}

// GeminiConfig configures a GeminiClient.
type GeminiConfig struct {
	BaseURL        string // default: the public generativelanguage endpoint
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration // default: 60s
}

// NewGeminiClient creates a Gemini REST client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &GeminiClient{
		baseURL:    baseURL,
		embedModel: cfg.EmbeddingModel,
		chatModel:  cfg.ChatModel,
		client:     &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type embedRequest struct {
	Content  geminiContent `json:"content"`
	TaskType TaskType      `json:"taskType,omitempty"`
}

type embedResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

type generateRequest struct {
	Contents []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// EmbedContent embeds text with the configured embedding model using the
// given API key. A provider 429 maps to core.ErrRateLimited, any other
// failure to core.ErrProvider, and a response without values to
// core.ErrEmptyResult.
func (c *GeminiClient) EmbedContent(ctx context.Context, apiKey, text string, task TaskType) ([]float64, error) {
	reqBody := embedRequest{
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: task,
	}

	var result embedResponse
	url := fmt.Sprintf("%s/models/%s:embedContent", c.baseURL, c.embedModel)
	if err := c.post(ctx, url, apiKey, reqBody, &result); err != nil {
		return nil, err
	}

	if len(result.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embed content: %w", core.ErrEmptyResult)
	}
	return result.Embedding.Values, nil
}

// GenerateContent runs a single-turn completion with the configured chat
// model using the given API key.
func (c *GeminiClient) GenerateContent(ctx context.Context, apiKey, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	var result generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.chatModel)
	if err := c.post(ctx, url, apiKey, reqBody, &result); err != nil {
		return "", err
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generate content: %w", core.ErrEmptyResult)
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}

func (c *GeminiClient) post(ctx context.Context, url, apiKey string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: status 429", core.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", core.ErrProvider, resp.StatusCode, truncate(string(respBody), 200))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", core.ErrProvider, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/markdave123-py/Scholara/internal/core"
)

const (
	DefaultChatBaseURL     = "https://api.deepseek.com"
	DefaultChatModel       = "deepseek-chat"
	DefaultChatTemperature = 0.8
	DefaultChatTimeout     = 5 * time.Minute
)

// ChatConfig configures an OpenAI-compatible chat completion client.
// DeepSeek and OpenAI both speak this protocol.
type ChatConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAIChat implements core.LLMProvider against /chat/completions.
type OpenAIChat struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIChat(cfg ChatConfig) (*OpenAIChat, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultChatBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultChatModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultChatTimeout
	}
	return &OpenAIChat{
		client:      &http.Client{Timeout: cfg.Timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *OpenAIChat) ModelName() string { return c.model }

// Generate sends one chat completion. An empty systemPrompt sends the user
// prompt as the only message.
func (c *OpenAIChat) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var msgs []chatMessage
	if systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: userPrompt})

	body, err := json.Marshal(chatRequest{Model: c.model, Messages: msgs, Temperature: c.temperature})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("chat error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
		}
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat error (status %d): %s", resp.StatusCode, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat: no choices returned")
	}
	return out.Choices[0].Message.Content, nil
}

var _ core.LLMProvider = (*OpenAIChat)(nil)

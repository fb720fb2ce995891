package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAI calls the chat completions API through go-openai.
type OpenAI struct {
	client     *openai.Client
	httpClient *http.Client
	apiKey     string
	model      string
}

func NewOpenAI(cfg Config) *OpenAI {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = httpClient
	return &OpenAI{
		client:     openai.NewClientWithConfig(clientCfg),
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}
}

func (o *OpenAI) Chat(ctx context.Context, messages []Message) (string, error) {
	if o.apiKey == "" {
		return "", ErrMissingAPIKey
	}

	req := openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{Provider: "openai", StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "lore-keeper/backend/pkg/errors"
	"lore-keeper/backend/pkg/logger"
)

const completionOperation = "llm completion"

// LLMAdapter handles communication with an OpenAI-compatible endpoint (LiteLLM, OpenRouter)
type LLMAdapter struct {
	client    *openai.Client
	model     string
	maxTokens int
	mu        sync.RWMutex // Protects model field for concurrent access
	logger    *zap.Logger
}

// SetModel updates the model used by this adapter
func (a *LLMAdapter) SetModel(model string) {
	if model != "" {
		a.mu.Lock()
		a.model = model
		a.mu.Unlock()
		a.logger.Debug("LLM adapter model updated", zap.String("model", model))
	}
}

// GetModel returns the current model
func (a *LLMAdapter) GetModel() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.model
}

// NewLLMAdapter creates a new LLM adapter. baseURL is the server root; "/v1" is appended.
func NewLLMAdapter(baseURL, apiKey, modelID string, maxTokens int) *LLMAdapter {
	// LiteLLM accepts any key when none is configured
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"

	return &LLMAdapter{
		client:    openai.NewClientWithConfig(config),
		model:     modelID,
		maxTokens: maxTokens,
		logger:    logger.Get(),
	}
}

// Complete sends one system + user exchange and returns the text of the first choice.
// There is no retry; callers see the first failure.
func (a *LLMAdapter) Complete(ctx context.Context, systemPrompt, userMsg string) (string, error) {
	currentModel := a.GetModel()

	req := openai.ChatCompletionRequest{
		Model: currentModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		MaxTokens:   a.maxTokens,
		Temperature: 0.7,
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("LLM request failed",
			zap.Error(err),
			zap.String("model", currentModel),
		)
		return "", apperrors.NewTransport(completionOperation, statusCode(err), err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewMalformedResponse(completionOperation, "no choices in LLM response", nil)
	}
	content := resp.Choices[0].Message.Content

	a.logger.Debug("LLM response generated",
		zap.String("model", currentModel),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Bool("has_content", content != ""),
	)
	return content, nil
}

// CompleteJSON is Complete for prompts that ask for a JSON answer. Code fences and prose
// around the JSON value are stripped; text without a valid JSON value is malformed.
func (a *LLMAdapter) CompleteJSON(ctx context.Context, systemPrompt, userMsg string) (json.RawMessage, error) {
	content, err := a.Complete(ctx, systemPrompt, userMsg)
	if err != nil {
		return nil, err
	}
	raw, err := ExtractJSON(content)
	if err != nil {
		a.logger.Warn("LLM response carried no JSON",
			zap.Int("length", len(content)),
			zap.Error(err),
		)
		return nil, err
	}
	return raw, nil
}

// ExtractJSON finds the JSON value in a model answer
func ExtractJSON(content string) (json.RawMessage, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			// drop the language tag, e.g. ```json
			text = text[nl+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if json.Valid([]byte(text)) && text != "" {
		return json.RawMessage(text), nil
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return nil, apperrors.NewMalformedResponse(completionOperation, "no JSON value in response", nil)
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end <= start || !json.Valid([]byte(text[start:end+1])) {
		return nil, apperrors.NewMalformedResponse(completionOperation, "no JSON value in response", nil)
	}
	return json.RawMessage(text[start : end+1]), nil
}

// statusCode pulls the HTTP status out of go-openai errors, zero when there is none
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

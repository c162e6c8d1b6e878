// Package openai implements the OpenAI chat-completions provider.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/819SauCe/Galaxy/pkg/llm"
	"github.com/819SauCe/Galaxy/pkg/provider"
)

const (
	// Name is the provider identifier used in chat requests.
	Name = "openai"

	// DefaultBaseURL is the public OpenAI API root.
	DefaultBaseURL = "https://api.openai.com/v1"

	displayName             = "OpenAI"
	chatCompletionsEndpoint = "/chat/completions"
)

// Config configures the OpenAI provider.
type Config struct {
	// BaseURL is the API root. Empty means DefaultBaseURL.
	BaseURL string

	// HTTPClient performs the calls. Nil means a client without a timeout.
	HTTPClient *http.Client
}

// Provider talks to the OpenAI chat-completions API.
type Provider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

var _ provider.Provider = (*Provider)(nil)

// New creates an OpenAI provider.
func New(config Config, logger *zap.Logger) *Provider {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		baseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

// Name implements provider.Provider.
func (p *Provider) Name() string {
	return Name
}

// Normalize implements provider.Provider.
func (p *Provider) Normalize(req *llm.ChatRequest) []llm.Message {
	return Normalize(req)
}

// Send posts the messages to the chat-completions endpoint and returns the content
// of the first choice.
func (p *Provider) Send(ctx context.Context, messages []llm.Message, model, apiKey string) (*llm.ChatResponse, error) {
	reqBody, err := json.Marshal(requestFromMessages(model, messages))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.baseURL + chatCompletionsEndpoint
	p.logger.Debug("sending chat completion",
		zap.String("url", url),
		zap.String("model", model),
		zap.Int("message_count", len(messages)),
		zap.Int("body_size", len(reqBody)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, &provider.TransportError{Provider: displayName, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	start := time.Now()
	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &provider.TransportError{Provider: displayName, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &provider.TransportError{Provider: displayName, Err: fmt.Errorf("read response: %w", err)}
	}

	p.logger.Debug("received chat completion",
		zap.Int("status", httpResp.StatusCode),
		zap.Int("body_size", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &provider.StatusError{
			Provider:   displayName,
			StatusCode: httpResp.StatusCode,
			Body:       string(body),
		}
	}

	text, err := parseResponse(body)
	if err != nil {
		return nil, err
	}

	return &llm.ChatResponse{Text: text}, nil
}

func parseResponse(body []byte) (string, error) {
	var resp chatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &provider.ParseError{Provider: displayName, Err: err}
	}

	if resp.Choices == nil {
		return "", &provider.ParseError{Provider: displayName, Err: errors.New(`missing field "choices"`)}
	}

	choices := *resp.Choices
	if len(choices) == 0 {
		return "", fmt.Errorf("%s: %w", displayName, provider.ErrEmptyResponse)
	}

	content := choices[0].Message.Content
	if content == nil {
		return "", &provider.ParseError{Provider: displayName, Err: errors.New(`choices[0].message.content is not a string`)}
	}

	return *content, nil
}

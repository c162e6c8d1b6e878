package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/819SauCe/Galaxy/pkg/llm"
	"github.com/819SauCe/Galaxy/pkg/provider"
	"github.com/819SauCe/Galaxy/pkg/settings"
)

// sender delivers one chat turn and returns the reply.
type sender interface {
	Send(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)
}

// localSender dispatches in-process, completing requests from the settings store.
type localSender struct {
	registry     *provider.Registry
	storer       settings.Storer
	defaultModel string
	envAPIKey    string
}

func (s *localSender) Send(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	if err := settings.Resolve(ctx, s.storer, req, s.defaultModel); err != nil {
		return nil, fmt.Errorf("could not read settings: %w", err)
	}
	if req.APIKey == "" {
		req.APIKey = s.envAPIKey
	}
	if _, ok := s.registry.Get(req.Provider); ok {
		if err := settings.RequireAPIKey(req); err != nil {
			return nil, fmt.Errorf("%w (save one with galaxy settings, pass --api-key or set OPENAI_API_KEY)", err)
		}
	}

	return s.registry.Dispatch(ctx, req)
}

// remoteSender posts requests to a running relay server.
type remoteSender struct {
	serverURL string
	client    *http.Client
}

func newRemoteSender(serverURL string) *remoteSender {
	return &remoteSender{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{},
	}
}

func (s *remoteSender) Send(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp llm.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, errors.New(errResp.Error)
		}
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result llm.ChatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	return &result, nil
}

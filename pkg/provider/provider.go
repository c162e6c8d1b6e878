// Package provider defines the contract every LLM provider implements and routes
// chat requests to the provider they name.
package provider

import (
	"context"

	"github.com/819SauCe/Galaxy/pkg/llm"
)

// Provider shapes a chat request into its own message format and performs the
// completion call. Implementations hold no per-request state and are safe for
// concurrent use.
type Provider interface {
	// Name is the identifier callers put in llm.ChatRequest.Provider (e.g., "openai").
	Name() string

	// Normalize builds the ordered message list for the request. It never fails
	// and never returns an empty list.
	Normalize(req *llm.ChatRequest) []llm.Message

	// Send performs one completion call with the normalized messages.
	Send(ctx context.Context, messages []llm.Message, model, apiKey string) (*llm.ChatResponse, error)
}

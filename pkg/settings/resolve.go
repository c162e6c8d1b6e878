package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/819SauCe/Galaxy/pkg/llm"
)

// ErrMissingAPIKey is returned when neither the request nor the saved settings
// carry an API key for the provider.
var ErrMissingAPIKey = errors.New("API key not configured")

// RequireAPIKey fails with ErrMissingAPIKey when req has no API key.
func RequireAPIKey(req *llm.ChatRequest) error {
	if req.APIKey == "" {
		return fmt.Errorf("%w for provider %q", ErrMissingAPIKey, req.Provider)
	}

	return nil
}

// Fill completes req from the saved settings: an empty provider becomes the primary
// provider, an empty API key and model come from that provider's saved entries, and a
// model still missing becomes defaultModel. The system prompt is never filled.
func (g GeneralSettings) Fill(req *llm.ChatRequest, defaultModel string) {
	if req.Provider == "" {
		req.Provider = g.PrimaryAI
	}
	if req.Provider == "" {
		req.Provider = DefaultGeneralSettings().PrimaryAI
	}

	if req.APIKey == "" {
		req.APIKey = g.APIKeys[req.Provider]
	}

	if req.Model == "" {
		req.Model = g.SelectedModels[req.Provider]
	}
	if req.Model == "" {
		req.Model = defaultModel
	}
}

// Resolve fills the empty fields of req from the general settings saved in s, or
// from DefaultGeneralSettings when none are saved. Nothing is read from storage
// when req is already complete.
func Resolve(ctx context.Context, s Storer, req *llm.ChatRequest, defaultModel string) error {
	if req.Provider != "" && req.APIKey != "" && req.Model != "" {
		return nil
	}

	general, err := LoadGeneral(ctx, s)
	if err != nil {
		return err
	}

	general.Fill(req, defaultModel)
	return nil
}

package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// GeneralKey is the key the general settings are stored under.
const GeneralKey = "general"

// GeneralSettings are the user-facing preferences of the chat application.
type GeneralSettings struct {
	SystemPrompt   string            `json:"systemPrompt"`
	AppLanguage    string            `json:"appLanguage"`
	APIKeys        map[string]string `json:"apiKeys"`
	PrimaryAI      string            `json:"primaryAI"`
	SelectedModels map[string]string `json:"selectedModels"`
}

// DefaultGeneralSettings returns the settings used before the user saved any.
func DefaultGeneralSettings() GeneralSettings {
	return GeneralSettings{
		SystemPrompt: "",
		AppLanguage:  "pt-BR",
		APIKeys:      map[string]string{"openai": "", "copilot": "", "anthropic": ""},
		PrimaryAI:    "openai",
		SelectedModels: map[string]string{
			"openai":    "gpt-4",
			"copilot":   "copilot-code-x",
			"anthropic": "claude-2",
		},
	}
}

// Save JSON-encodes value and stores it under key.
func Save(ctx context.Context, s Storer, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding setting %s: %w", key, err)
	}

	if err := s.Put(ctx, key, data); err != nil {
		return fmt.Errorf("storing setting %s: %w", key, err)
	}

	return nil
}

// Load decodes the value stored under key. A missing key or a value that is not
// valid JSON for T yields fallback. Only storage failures are returned as errors.
func Load[T any](ctx context.Context, s Storer, key string, fallback T) (T, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		var notFound ErrNotFound
		if errors.As(err, &notFound) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("loading setting %s: %w", key, err)
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return fallback, nil
	}

	return value, nil
}

// LoadGeneral returns the stored general settings, or the defaults.
func LoadGeneral(ctx context.Context, s Storer) (GeneralSettings, error) {
	return Load(ctx, s, GeneralKey, DefaultGeneralSettings())
}

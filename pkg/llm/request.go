package llm

// ChatRequest is the request the front-end hands to the relay for a single chat turn.
type ChatRequest struct {
	// Provider identifier (e.g., "openai")
	Provider string `json:"provider"`

	// Model name (e.g., "gpt-4o")
	Model string `json:"model"`

	// APIKey is the provider credential. It is used for one call and never stored.
	APIKey string `json:"apiKey"`

	// SystemPrompt may be empty or whitespace only, in which case no system message is sent.
	SystemPrompt string `json:"systemPrompt"`

	// Message is the current user text.
	Message string `json:"message"`

	// History holds the prior turns of the conversation, oldest first.
	// A missing and an empty history are treated the same.
	History []HistoryMessage `json:"messages,omitempty"`

	Attachments Attachments `json:"attachments"`
}

// HistoryMessage is one prior turn supplied by the caller.
type HistoryMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Attachments carries everything the user attached to the current message.
// Only images are sent to providers, files and audio are accepted but ignored.
type Attachments struct {
	Images   []ImageAttachment `json:"images"`
	Files    []FileAttachment  `json:"files"`
	HasAudio bool              `json:"hasAudio"`
}

// ImageAttachment is an image attached to the current message. URL is usually a data URL.
type ImageAttachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size uint64 `json:"size"`
	URL  string `json:"url"`
}

// FileAttachment is a non-image file attached to the current message.
type FileAttachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size uint64 `json:"size"`
	Type string `json:"type"`
}

// HasImages reports whether any image is attached.
func (a Attachments) HasImages() bool {
	return len(a.Images) > 0
}

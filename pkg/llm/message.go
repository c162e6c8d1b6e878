package llm

// Message roles understood by every provider. History entries may carry other roles,
// which are passed through untouched.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Content part types.
const (
	PartText     = "text"
	PartImageURL = "image_url"
)

// Message is a normalized conversation message, ready to be encoded by a provider.
// Content is either plain Text or, for multimodal messages, an ordered list of Parts.
type Message struct {
	Role  string        `json:"role"`
	Text  string        `json:"text,omitempty"`
	Parts []ContentPart `json:"parts,omitempty"`
}

// ContentPart is one typed piece of a multimodal message.
type ContentPart struct {
	Type     string `json:"type"`                // PartText or PartImageURL
	Text     string `json:"text,omitempty"`      // set when Type is PartText
	ImageURL string `json:"image_url,omitempty"` // set when Type is PartImageURL
}

// TextMessage builds a plain text message.
func TextMessage(role, text string) Message {
	return Message{Role: role, Text: text}
}

// TextPart builds a text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

// ImageURLPart builds an image reference content part.
func ImageURLPart(url string) ContentPart {
	return ContentPart{Type: PartImageURL, ImageURL: url}
}

// IsMultimodal reports whether the message content is a list of parts.
func (m Message) IsMultimodal() bool {
	return m.Parts != nil
}

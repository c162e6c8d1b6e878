package openai

import (
	"encoding/json"

	"github.com/819SauCe/Galaxy/pkg/llm"
)

/*
	CHAT COMPLETIONS API - INPUT
*/

// chatCompletionRequest is the /v1/chat/completions request body.
type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatMessage carries content as a string, or as []contentPart for multimodal messages.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string
	Text     string
	ImageURL string
}

type contentPartImage struct {
	URL string `json:"url"`
}

// MarshalJSON writes only the field that belongs to the part type, so a text part
// keeps an empty "text" and an image part never carries one.
func (p contentPart) MarshalJSON() ([]byte, error) {
	if p.Type == llm.PartImageURL {
		return json.Marshal(struct {
			Type     string           `json:"type"`
			ImageURL contentPartImage `json:"image_url"`
		}{Type: p.Type, ImageURL: contentPartImage{URL: p.ImageURL}})
	}

	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: p.Type, Text: p.Text})
}

/*
	CHAT COMPLETIONS API - OUTPUT
*/

// chatCompletionResponse keeps Choices as a pointer so a missing field can be told
// apart from an empty list.
type chatCompletionResponse struct {
	ID      string        `json:"id"`
	Model   string        `json:"model"`
	Choices *[]chatChoice `json:"choices"`
}

type chatChoice struct {
	Index        int                 `json:"index"`
	Message      chatResponseMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type chatResponseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

/*
	CONVERSION FUNCTIONS
*/

func requestFromMessages(model string, messages []llm.Message) chatCompletionRequest {
	req := chatCompletionRequest{
		Model:    model,
		Messages: make([]chatMessage, 0, len(messages)),
	}

	for _, m := range messages {
		req.Messages = append(req.Messages, chatMessageFromGeneric(m))
	}

	return req
}

func chatMessageFromGeneric(m llm.Message) chatMessage {
	if !m.IsMultimodal() {
		return chatMessage{Role: m.Role, Content: m.Text}
	}

	parts := make([]contentPart, 0, len(m.Parts))
	for _, p := range m.Parts {
		parts = append(parts, contentPart{Type: p.Type, Text: p.Text, ImageURL: p.ImageURL})
	}

	return chatMessage{Role: m.Role, Content: parts}
}

package openai

import (
	"strings"

	"github.com/819SauCe/Galaxy/pkg/llm"
)

// Normalize builds the ordered chat-completions message list for req.
//
// A system message leads when the system prompt has non-whitespace content. With no
// history the current user message follows. With history every entry is carried as
// plain text, except a trailing "user" entry while images are attached: that entry is
// replaced by the multimodal current user message built from req.Message. A history
// ending on any other role is passed through as is and the current message is not
// appended.
func Normalize(req *llm.ChatRequest) []llm.Message {
	messages := make([]llm.Message, 0, len(req.History)+2)

	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, llm.TextMessage(llm.RoleSystem, req.SystemPrompt))
	}

	images := req.Attachments.Images
	hasImages := req.Attachments.HasImages()

	if len(req.History) == 0 {
		messages = append(messages, CurrentUserMessage(req.Message, images))
	} else {
		last := len(req.History) - 1
		for i, m := range req.History {
			if i == last && m.Role == llm.RoleUser && hasImages {
				messages = append(messages, CurrentUserMessage(req.Message, images))
				continue
			}
			messages = append(messages, llm.TextMessage(m.Role, m.Content))
		}
	}

	if len(messages) == 0 {
		messages = append(messages, CurrentUserMessage(req.Message, images))
	}

	return messages
}

// CurrentUserMessage builds the user message for the in-flight turn. Without images it
// is plain text; with images it is a text part followed by one image part per
// attachment, in attachment order.
func CurrentUserMessage(message string, images []llm.ImageAttachment) llm.Message {
	if len(images) == 0 {
		return llm.TextMessage(llm.RoleUser, message)
	}

	parts := make([]llm.ContentPart, 0, len(images)+1)
	parts = append(parts, llm.TextPart(message))
	for _, img := range images {
		parts = append(parts, llm.ImageURLPart(img.URL))
	}

	return llm.Message{Role: llm.RoleUser, Parts: parts}
}

package relay

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/819SauCe/Galaxy/pkg/llm"
)

const mcpToolName = "chat_completion"

// chatToolInput is the MCP argument shape of the chat tool. Credentials are not
// accepted here, they come from the saved settings.
type chatToolInput struct {
	Provider     string               `json:"provider,omitempty" jsonschema:"provider identifier, defaults to the saved primary provider"`
	Model        string               `json:"model,omitempty" jsonschema:"model name, defaults to the saved model for the provider"`
	SystemPrompt string               `json:"system_prompt,omitempty" jsonschema:"optional system prompt"`
	Message      string               `json:"message" jsonschema:"the current user message"`
	History      []llm.HistoryMessage `json:"history,omitempty" jsonschema:"prior turns of the conversation, oldest first"`
	ImageURLs    []string             `json:"image_urls,omitempty" jsonschema:"images attached to the message, as http(s) or data URLs"`
}

type chatToolOutput struct {
	Text string `json:"text"`
}

// newMCPServer exposes Chat as an MCP tool.
func (r *Relay) newMCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "galaxy", Version: "v0.1.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        mcpToolName,
		Description: "Send a chat message, with optional history and images, to the configured LLM provider and return its reply.",
	}, r.chatTool)

	return server
}

func (r *Relay) chatTool(ctx context.Context, _ *mcp.CallToolRequest, in chatToolInput) (*mcp.CallToolResult, chatToolOutput, error) {
	req := in.chatRequest()

	resp, err := r.Chat(ctx, uuid.NewString(), req)
	if err != nil {
		return nil, chatToolOutput{}, err
	}

	return nil, chatToolOutput{Text: resp.Text}, nil
}

func (in chatToolInput) chatRequest() *llm.ChatRequest {
	req := &llm.ChatRequest{
		Provider:     in.Provider,
		Model:        in.Model,
		SystemPrompt: in.SystemPrompt,
		Message:      in.Message,
		History:      in.History,
	}

	for i, u := range in.ImageURLs {
		req.Attachments.Images = append(req.Attachments.Images, llm.ImageAttachment{
			ID:   uuid.NewString(),
			Name: "image-" + strconv.Itoa(i+1),
			URL:  u,
		})
	}

	return req
}

// mcpHandler serves the MCP streamable HTTP transport through fiber.
func (r *Relay) mcpHandler() fiber.Handler {
	server := r.newMCPServer()
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
		// the adaptor buffers the whole response, so there is nothing to stream
		JSONResponse: true,
	})

	return adaptor.HTTPHandler(handler)
}

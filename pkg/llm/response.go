package llm

// ChatResponse is the successful result of a chat turn.
type ChatResponse struct {
	Text string `json:"text"`
}

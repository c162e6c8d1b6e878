// Package llm provides the provider-agnostic representations of chat requests,
// normalized conversation messages and replies that flow through the relay.
package llm

// ErrorResponse is the failure body returned to callers of the relay.
type ErrorResponse struct {
	Error string `json:"error"`
}

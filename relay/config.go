package relay

// Config is the relay server configuration.
type Config struct {
	// Address to listen on (e.g., "127.0.0.1:8080")
	ListenAddr string

	// DefaultModel is used when neither the request nor the saved settings name a model.
	DefaultModel string
}

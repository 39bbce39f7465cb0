package llm

import (
	"context"
	"time"
)

// Request is one chat/completion round trip. When Schema is set, the
// backend is asked to constrain decoding to that JSON schema; backends
// that cannot are still expected to return JSON matching it.
type Request struct {
	System     string
	User       string
	SchemaName string
	Schema     any
}

// Client abstracts the language-model backend so it can be mocked.
// Implementations own their transport-level retry policy; callers treat a
// returned error as "backend unavailable" and do not retry.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)

	// Ping reports whether the backend is reachable. It must be cheap
	// enough for a health endpoint to call on every request.
	Ping(ctx context.Context) error
}

// Config holds backend connection settings.
type Config struct {
	// BaseURL of an OpenAI-compatible API (empty = api.openai.com)
	BaseURL string

	// Model name, required
	Model string

	// APIKey for the backend; local backends may not need one
	APIKey string

	// Timeout per completion call
	Timeout time.Duration
}

// DefaultTimeout applies when Config.Timeout is zero. Extraction on small
// local models can be slow, so this is generous.
const DefaultTimeout = 120 * time.Second

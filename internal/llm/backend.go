package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/daydemir/mle/internal/types"
)

// FinishStop is the finish reason that marks a complete answer
const FinishStop = "stop"

// Chunk is one incremental piece of a streamed completion
type Chunk struct {
	Content      string
	FinishReason string
}

// Stream is a finite, non-restartable sequence of chunks. Recv returns
// io.EOF once the server closed the stream.
type Stream interface {
	Recv() (Chunk, error)
	Close() error
}

// Client is a chat-completion backend
type Client interface {
	// Name returns the backend name (e.g., "openai", "ollama")
	Name() string

	// Complete returns the full assistant message for the conversation
	Complete(ctx context.Context, messages []types.Message) (string, error)

	// Stream starts a streamed completion for the conversation
	Stream(ctx context.Context, messages []types.Message) (Stream, error)
}

// Options configures a backend
type Options struct {
	Backend     string
	Model       string
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
}

// Backend names
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
)

// New creates the client for opts.Backend
func New(opts Options) (Client, error) {
	switch opts.Backend {
	case BackendOpenAI, "":
		if opts.BaseURL == "" {
			opts.BaseURL = "https://api.openai.com/v1"
		}
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai backend needs an API key (set llm.api_key or OPENAI_API_KEY)")
		}
		return newChatClient(BackendOpenAI, opts), nil
	case BackendOllama:
		if opts.BaseURL == "" {
			opts.BaseURL = "http://localhost:11434/v1"
		}
		return newChatClient(BackendOllama, opts), nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q (valid: openai, ollama)", opts.Backend)
	}
}

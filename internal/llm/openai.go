package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daydemir/mle/internal/types"
)

const maxRetries = 3

// ChatClient talks to an OpenAI-compatible /chat/completions endpoint
type ChatClient struct {
	name        string
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	timeout     time.Duration
}

func newChatClient(name string, opts Options) *ChatClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ChatClient{
		name:        name,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: opts.Temperature,
		// Streams can legitimately outlive any client-wide timeout, so the
		// deadline is applied per request via context instead.
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

func (c *ChatClient) Name() string {
	return c.name
}

type chatRequest struct {
	Model       string          `json:"model"`
	Messages    []types.Message `json:"messages"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the conversation and returns the assistant message
func (c *ChatClient) Complete(ctx context.Context, messages []types.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.post(ctx, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Stream sends the conversation with streaming enabled
func (c *ChatClient) Stream(ctx context.Context, messages []types.Message) (Stream, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)

	resp, err := c.post(ctx, chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		Stream:      true,
	})
	if err != nil {
		cancel()
		return nil, err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &sseStream{body: resp.Body, scanner: scanner, cancel: cancel}, nil
}

// post sends the request, retrying on transport errors and 429 before any
// body has been consumed
func (c *ChatClient) post(ctx context.Context, reqBody chatRequest) (*http.Response, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if reqBody.Stream {
			req.Header.Set("Accept", "text/event-stream")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limit exceeded (429): %s", strings.TrimSpace(string(body)))
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		return resp, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// sseStream reads "data:" events of a server-sent event stream
type sseStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
	done    bool
}

func (s *sseStream) Recv() (Chunk, error) {
	if s.done {
		return Chunk{}, io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			s.done = true
			return Chunk{}, io.EOF
		}

		var event chatResponse
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			// Skip malformed events
			continue
		}
		if event.Error != nil {
			return Chunk{}, fmt.Errorf("API error: %s", event.Error.Message)
		}
		if len(event.Choices) == 0 {
			continue
		}

		choice := event.Choices[0]
		chunk := Chunk{Content: choice.Delta.Content}
		if choice.FinishReason != nil {
			chunk.FinishReason = *choice.FinishReason
		}
		return chunk, nil
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("stream read failed: %w", err)
	}
	return Chunk{}, io.EOF
}

func (s *sseStream) Close() error {
	s.done = true
	err := s.body.Close()
	s.cancel()
	return err
}

// Package testutil provides scripted fakes of the model, human and command
// collaborators so the chain can be driven without a terminal or network.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/daydemir/mle/internal/llm"
	"github.com/daydemir/mle/internal/runner"
	"github.com/daydemir/mle/internal/types"
)

// ErrScriptExhausted is returned when a fake is called more often than scripted
var ErrScriptExhausted = errors.New("script exhausted")

// SetupTestDir creates a temp directory with symlinks resolved (for macOS)
func SetupTestDir(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	// Resolve symlinks for macOS (/var -> /private/var)
	if resolved, err := filepath.EvalSymlinks(tmpDir); err != nil {
		t.Logf("warning: could not resolve symlinks for temp dir: %v", err)
	} else {
		tmpDir = resolved
	}
	return tmpDir
}

// WriteFile writes content to path, failing the test on error
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// StreamScript describes one streamed completion
type StreamScript struct {
	Chunks []llm.Chunk
	// Err is returned by Recv after the chunks are drained instead of io.EOF
	Err error
	// BeforeRecv runs before chunk i is returned, e.g. to cancel a context
	BeforeRecv func(i int)
}

// Code builds a stream that answers with a fenced block and a stop marker
func Code(language, code string) StreamScript {
	return StreamScript{Chunks: []llm.Chunk{
		{Content: "Here is the script:\n"},
		{Content: "```" + language + "\n" + code},
		{Content: "\n```\n"},
		{FinishReason: llm.FinishStop},
	}}
}

// NoStop builds a stream that ends without a stop marker
func NoStop(text string) StreamScript {
	return StreamScript{Chunks: []llm.Chunk{{Content: text}}}
}

// Client is a scripted llm.Client. Complete answers are consumed from
// Replies, streams from Streams, both in order.
type Client struct {
	mu      sync.Mutex
	Replies []string
	Streams []StreamScript

	// Requests records the messages of every call
	Requests [][]types.Message
	// StreamCalls counts Stream invocations
	StreamCalls int
}

// Name returns the fake backend name
func (c *Client) Name() string { return "fake" }

// Complete returns the next scripted reply
func (c *Client) Complete(ctx context.Context, messages []types.Message) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.Requests = append(c.Requests, copyMessages(messages))
	if len(c.Replies) == 0 {
		return "", fmt.Errorf("complete: %w", ErrScriptExhausted)
	}
	reply := c.Replies[0]
	c.Replies = c.Replies[1:]
	return reply, nil
}

// Stream returns the next scripted stream
func (c *Client) Stream(ctx context.Context, messages []types.Message) (llm.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.Requests = append(c.Requests, copyMessages(messages))
	c.StreamCalls++
	if len(c.Streams) == 0 {
		return nil, fmt.Errorf("stream: %w", ErrScriptExhausted)
	}
	script := c.Streams[0]
	c.Streams = c.Streams[1:]
	return &Stream{script: script}, nil
}

// LastRequest returns the messages of the most recent call
func (c *Client) LastRequest() []types.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Requests) == 0 {
		return nil
	}
	return c.Requests[len(c.Requests)-1]
}

func copyMessages(messages []types.Message) []types.Message {
	out := make([]types.Message, len(messages))
	copy(out, messages)
	return out
}

// Stream replays a StreamScript
type Stream struct {
	script StreamScript
	next   int
	Closed bool
}

// NewStream wraps a script as an llm.Stream
func NewStream(script StreamScript) *Stream {
	return &Stream{script: script}
}

// Recv returns the next chunk, then io.EOF (or the scripted error)
func (s *Stream) Recv() (llm.Chunk, error) {
	if s.next >= len(s.script.Chunks) {
		if s.script.Err != nil {
			return llm.Chunk{}, s.script.Err
		}
		return llm.Chunk{}, io.EOF
	}
	if s.script.BeforeRecv != nil {
		s.script.BeforeRecv(s.next)
	}
	chunk := s.script.Chunks[s.next]
	s.next++
	return chunk, nil
}

// Close marks the stream closed
func (s *Stream) Close() error {
	s.Closed = true
	return nil
}

// Answer is one scripted human response
type Answer struct {
	Value string
	Yes   bool
	Err   error
	// Before runs when the prompt is shown, e.g. to cancel a context
	Before func()
}

// Prompt records one question asked of the fake human
type Prompt struct {
	Kind    string // select, text or confirm
	Message string
	Options []string
	Default string
}

// Prompter is a scripted interact.Prompter
type Prompter struct {
	Answers []Answer
	Prompts []Prompt
}

// Select returns the next scripted value
func (p *Prompter) Select(ctx context.Context, message string, options []string) (string, error) {
	a, err := p.next(ctx, Prompt{Kind: "select", Message: message, Options: options})
	return a.Value, err
}

// Text returns the next scripted value, or defaultValue when it is empty
func (p *Prompter) Text(ctx context.Context, message, defaultValue string) (string, error) {
	a, err := p.next(ctx, Prompt{Kind: "text", Message: message, Default: defaultValue})
	if err != nil {
		return "", err
	}
	if a.Value == "" {
		return defaultValue, nil
	}
	return a.Value, nil
}

// Confirm returns the next scripted yes/no
func (p *Prompter) Confirm(ctx context.Context, message string) (bool, error) {
	a, err := p.next(ctx, Prompt{Kind: "confirm", Message: message})
	return a.Yes, err
}

func (p *Prompter) next(ctx context.Context, prompt Prompt) (Answer, error) {
	p.Prompts = append(p.Prompts, prompt)
	if len(p.Answers) == 0 {
		return Answer{}, fmt.Errorf("%s %q: %w", prompt.Kind, prompt.Message, ErrScriptExhausted)
	}
	a := p.Answers[0]
	p.Answers = p.Answers[1:]
	if a.Before != nil {
		a.Before()
	}
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	return a, a.Err
}

// Kinds returns the kind of every prompt shown, in order
func (p *Prompter) Kinds() []string {
	kinds := make([]string, len(p.Prompts))
	for i, pr := range p.Prompts {
		kinds[i] = pr.Kind
	}
	return kinds
}

// Runner is a scripted command runner. Each batch consumes the next exit
// code; a missing script entry exits 0.
type Runner struct {
	ExitCodes []int
	Logs      []string
	// Err, when set, is returned for every batch (e.g. context.Canceled)
	Err error

	Batches [][]string
}

// Run records the batch and returns the next scripted result
func (r *Runner) Run(ctx context.Context, commands []string) (runner.Result, error) {
	r.Batches = append(r.Batches, append([]string(nil), commands...))
	if r.Err != nil {
		return runner.Result{ExitCode: -1}, r.Err
	}
	if err := ctx.Err(); err != nil {
		return runner.Result{ExitCode: -1}, err
	}

	res := runner.Result{}
	if len(r.ExitCodes) > 0 {
		res.ExitCode = r.ExitCodes[0]
		r.ExitCodes = r.ExitCodes[1:]
	}
	if len(r.Logs) > 0 {
		res.Log = r.Logs[0]
		r.Logs = r.Logs[1:]
	} else if res.ExitCode != 0 {
		res.Log = fmt.Sprintf("Traceback (most recent call last):\nexit status %d\n", res.ExitCode)
	}
	res.TimedOut = res.ExitCode == runner.ExitTimeout
	return res, nil
}

// Calls returns the number of batches run
func (r *Runner) Calls() int {
	return len(r.Batches)
}

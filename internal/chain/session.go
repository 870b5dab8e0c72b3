package chain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/daydemir/mle/internal/llm"
	"github.com/daydemir/mle/internal/types"
	"github.com/daydemir/mle/internal/utils"
)

// Session is one streamed round-trip with the model that ends in a rewrite
// of the entry file
type Session struct {
	client    llm.Client
	observer  llm.StreamObserver
	entryFile string
	language  string
	logger    *zap.Logger
}

// NewSession creates a session writing language code to entryFile
func NewSession(client llm.Client, observer llm.StreamObserver, entryFile, language string, logger *zap.Logger) *Session {
	if observer == nil {
		observer = llm.NopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{client: client, observer: observer, entryFile: entryFile, language: language, logger: logger}
}

// Code picks the block of a response that Run writes to the entry file.
// Blocks in the session language win over shell snippets and the like.
func (s *Session) Code(text string) (string, bool) {
	return llm.ExtractCodeFor(text, s.language)
}

// Run streams a completion for history and returns the full text. The entry
// file is replaced only when the stream stopped with a fenced code block;
// otherwise Run returns ErrStreamEmpty and the file is left untouched.
func (s *Session) Run(ctx context.Context, history []types.Message) (string, error) {
	stream, err := s.client.Stream(ctx, history)
	if err != nil {
		return "", s.streamError(ctx, "failed to start completion", err)
	}
	defer stream.Close()

	acc, err := llm.Accumulate(ctx, stream, s.observer)
	if err != nil {
		return "", s.streamError(ctx, "completion stream", err)
	}

	if !acc.Stopped {
		s.logger.Warn("stream ended without stop marker", zap.Int("chunks", acc.Chunks))
		return "", ErrStreamEmpty
	}
	code, ok := s.Code(acc.Text)
	if !ok {
		s.logger.Warn("no code block in response", zap.Int("chars", len(acc.Text)))
		return "", ErrStreamEmpty
	}

	if err := os.MkdirAll(filepath.Dir(s.entryFile), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", s.entryFile, err)
	}
	if err := utils.WriteFileAtomic(s.entryFile, []byte(code), 0644); err != nil {
		return "", fmt.Errorf("failed to write entry file: %w", err)
	}
	s.logger.Info("entry file written", zap.String("path", s.entryFile), zap.Int("bytes", len(code)))

	return acc.Text, nil
}

// streamError marks failures caused by cancellation as ErrInterrupted
func (s *Session) streamError(ctx context.Context, msg string, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %s: %w", ErrInterrupted, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// StreamObserver receives streaming progress. Implementations render; the
// accumulation itself never depends on them.
type StreamObserver interface {
	// OnDelta is called for every non-empty fragment with the text so far
	OnDelta(delta, text string)
	// OnStop is called once when the stop marker arrives
	OnStop(text string)
}

// NopObserver ignores all events
type NopObserver struct{}

func (NopObserver) OnDelta(string, string) {}
func (NopObserver) OnStop(string)          {}

// Accumulation is the outcome of draining a stream
type Accumulation struct {
	Text    string
	Stopped bool // a chunk carried finish_reason "stop"
	Chunks  int
}

// Accumulate drains stream into a single text. It returns ctx.Err() when the
// context is cancelled between or during reads. The stream is not closed.
func Accumulate(ctx context.Context, stream Stream, observer StreamObserver) (Accumulation, error) {
	if observer == nil {
		observer = NopObserver{}
	}

	var acc Accumulation
	var sb strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			acc.Text = sb.String()
			return acc, err
		}

		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			acc.Text = sb.String()
			if ctxErr := ctx.Err(); ctxErr != nil {
				return acc, ctxErr
			}
			return acc, err
		}

		acc.Chunks++
		if chunk.Content != "" {
			sb.WriteString(chunk.Content)
			observer.OnDelta(chunk.Content, sb.String())
		}

		if chunk.FinishReason == FinishStop {
			acc.Stopped = true
			observer.OnStop(sb.String())
			break
		}
	}

	acc.Text = sb.String()
	return acc, nil
}

var codeBlockPattern = regexp.MustCompile("(?s)```([\\w+#.-]*)[ \\t]*\\r?\\n(.*?)```")

// languageTags maps a project language to the fence info strings used for it
var languageTags = map[string][]string{
	"python":     {"python", "py", "python3"},
	"javascript": {"javascript", "js"},
	"typescript": {"typescript", "ts"},
	"r":          {"r"},
}

// ExtractCode returns the body of the first non-empty fenced code block
func ExtractCode(text string) (string, bool) {
	return ExtractCodeFor(text, "")
}

// ExtractCodeFor returns the fenced block written in language. A block
// tagged with the language wins, then an untagged block, then the first
// block. An empty language takes the first block.
func ExtractCodeFor(text, language string) (string, bool) {
	tags := languageTags[strings.ToLower(language)]
	if tags == nil && language != "" {
		tags = []string{strings.ToLower(language)}
	}

	var untagged, first string
	for _, match := range codeBlockPattern.FindAllStringSubmatch(text, -1) {
		tag, code := strings.ToLower(match[1]), match[2]
		if strings.TrimSpace(code) == "" {
			continue
		}
		if language == "" {
			return code, true
		}
		for _, t := range tags {
			if tag == t {
				return code, true
			}
		}
		if tag == "" && untagged == "" {
			untagged = code
		}
		if first == "" {
			first = code
		}
	}
	if untagged != "" {
		return untagged, true
	}
	if first != "" {
		return first, true
	}
	return "", false
}

var (
	backtickNamePattern = regexp.MustCompile("`([\\w./-]+\\.[A-Za-z0-9]+)`")
	bareNamePattern     = regexp.MustCompile(`([\w-]+\.[A-Za-z0-9]+)`)
)

// ExtractFileName returns the file name suggested in text, preferring a
// backtick-quoted name. Directories are stripped.
func ExtractFileName(text string) string {
	if match := backtickNamePattern.FindStringSubmatch(text); match != nil {
		return filepath.Base(match[1])
	}
	if code, ok := ExtractCode(text); ok {
		text = code
	}
	if match := bareNamePattern.FindStringSubmatch(text); match != nil {
		return match[1]
	}
	return ""
}

// ExtractJSON decodes the first JSON object found in text into v. Models
// often wrap JSON in a fenced block or add prose around it, prose that may
// itself contain braces.
func ExtractJSON(text string, v any) error {
	if code, ok := ExtractCodeFor(text, "json"); ok && strings.Contains(code, "{") {
		text = code
	}

	var lastErr error
	for offset := 0; ; {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&raw); err != nil {
			lastErr = err
			offset = start + 1
			continue
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("cannot decode JSON response: %w", err)
		}
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("cannot decode JSON response: %w", lastErr)
	}
	return fmt.Errorf("no JSON object in response: %s", truncateText(text, 120))
}

func truncateText(s string, max int) string {
	s = cleanText(s)
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

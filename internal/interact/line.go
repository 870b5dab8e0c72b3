package interact

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Line prompts over plain line-oriented input, for pipes and CI
type Line struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLine creates a line-based prompter
func NewLine(in io.Reader, out io.Writer) *Line {
	return &Line{in: bufio.NewReader(in), out: out}
}

type lineResult struct {
	text string
	err  error
}

// readLine waits for one line or ctx. A cancelled read leaves the reader
// goroutine blocked on input; callers stop prompting after cancellation.
func (l *Line) readLine(ctx context.Context) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		text, err := l.in.ReadString('\n')
		ch <- lineResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.err != nil && (res.err != io.EOF || res.text == "") {
			if res.err == io.EOF {
				return "", ErrCancelled
			}
			return "", res.err
		}
		return strings.TrimSpace(res.text), nil
	}
}

func (l *Line) Select(ctx context.Context, message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("select %q: no options", message)
	}

	for {
		fmt.Fprintln(l.out, message)
		for i, opt := range options {
			fmt.Fprintf(l.out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprint(l.out, "> ")

		answer, err := l.readLine(ctx)
		if err != nil {
			return "", err
		}

		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(options) {
			return options[n-1], nil
		}
		for _, opt := range options {
			if strings.EqualFold(opt, answer) {
				return opt, nil
			}
		}
		fmt.Fprintf(l.out, "Please enter a number between 1 and %d.\n", len(options))
	}
}

func (l *Line) Text(ctx context.Context, message, defaultValue string) (string, error) {
	if defaultValue != "" {
		fmt.Fprintf(l.out, "%s [%s] ", message, defaultValue)
	} else {
		fmt.Fprintf(l.out, "%s ", message)
	}

	answer, err := l.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

func (l *Line) Confirm(ctx context.Context, message string) (bool, error) {
	for {
		fmt.Fprintf(l.out, "%s (Y/n) ", message)

		answer, err := l.readLine(ctx)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(l.out, "Please answer y or n.")
	}
}

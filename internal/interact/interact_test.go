package interact

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSelect(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"by number", "2\n", "SGD"},
		{"by name case-insensitive", "adam\n", "Adam"},
		{"retries invalid answer", "9\nfoo\n1\n", "Adam"},
		{"last line without newline", "2", "SGD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewLine(strings.NewReader(tt.input), &out)

			got, err := p.Select(context.Background(), "Optimizer?", []string{"Adam", "SGD"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "1) Adam")
		})
	}
}

func TestLineSelectEOFIsCancel(t *testing.T) {
	p := NewLine(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Select(context.Background(), "?", []string{"a"})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestLineSelectNoOptions(t *testing.T) {
	p := NewLine(strings.NewReader("1\n"), &bytes.Buffer{})
	_, err := p.Select(context.Background(), "?", nil)
	assert.Error(t, err)
}

func TestLineText(t *testing.T) {
	t.Run("answer", func(t *testing.T) {
		p := NewLine(strings.NewReader("/data/train.csv\n"), &bytes.Buffer{})
		got, err := p.Text(context.Background(), "CSV path:", "")
		require.NoError(t, err)
		assert.Equal(t, "/data/train.csv", got)
	})

	t.Run("empty answer uses default", func(t *testing.T) {
		var out bytes.Buffer
		p := NewLine(strings.NewReader("\n"), &out)
		got, err := p.Text(context.Background(), "File name:", "train.py")
		require.NoError(t, err)
		assert.Equal(t, "train.py", got)
		assert.Contains(t, out.String(), "[train.py]")
	})
}

func TestLineConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"\n", true},
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"maybe\nno\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			p := NewLine(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := p.Confirm(context.Background(), "Proceed?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type blockingReader struct{}

func (blockingReader) Read([]byte) (int, error) {
	select {}
}

func TestLineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	p := NewLine(blockingReader{}, &bytes.Buffer{})
	_, err := p.Confirm(ctx, "Proceed?")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelectModel(t *testing.T) {
	var m tea.Model = newSelectModel("Model?", []string{"ResNet", "ViT", "MLP"})

	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("down"))
	m, _ = m.Update(key("up"))
	m, cmd := m.Update(key("enter"))

	sm := m.(selectModel)
	assert.True(t, sm.done)
	assert.Equal(t, 1, sm.cursor)
	assert.NotNil(t, cmd)
	assert.Contains(t, sm.View(), "ViT")
}

func TestSelectModelCancel(t *testing.T) {
	var m tea.Model = newSelectModel("Model?", []string{"a"})
	m, _ = m.Update(key("ctrl+c"))
	assert.True(t, m.(selectModel).cancelled)
}

func TestConfirmModel(t *testing.T) {
	var m tea.Model = confirmModel{message: "ok?", value: true}
	m, _ = m.Update(key("n"))
	cm := m.(confirmModel)
	assert.True(t, cm.done)
	assert.False(t, cm.value)

	m = confirmModel{message: "ok?", value: true}
	m, _ = m.Update(key("enter"))
	assert.True(t, m.(confirmModel).value)

	m = confirmModel{message: "ok?", value: true}
	m, _ = m.Update(key("esc"))
	assert.True(t, m.(confirmModel).cancelled)
}

func TestTextModel(t *testing.T) {
	var m tea.Model = newTextModel("Path:", "default.csv")
	for _, r := range "a.csv" {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	m, _ = m.Update(key("enter"))

	tm := m.(textModel)
	assert.True(t, tm.done)
	assert.Equal(t, "a.csv", tm.input.Value())
	assert.Contains(t, tm.View(), "a.csv")
}

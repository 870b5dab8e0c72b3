package interact

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TTY prompts with small bubbletea programs
type TTY struct {
	in  io.Reader
	out io.Writer
}

// NewTTY creates a terminal prompter
func NewTTY(in *os.File, out io.Writer) *TTY {
	return &TTY{in: in, out: out}
}

func (t *TTY) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
	)
	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return final, nil
}

func (t *TTY) Select(ctx context.Context, message string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("select %q: no options", message)
	}
	final, err := t.run(ctx, newSelectModel(message, options))
	if err != nil {
		return "", err
	}
	m := final.(selectModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.options[m.cursor], nil
}

func (t *TTY) Text(ctx context.Context, message, defaultValue string) (string, error) {
	final, err := t.run(ctx, newTextModel(message, defaultValue))
	if err != nil {
		return "", err
	}
	m := final.(textModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	value := strings.TrimSpace(m.input.Value())
	if value == "" {
		return defaultValue, nil
	}
	return value, nil
}

func (t *TTY) Confirm(ctx context.Context, message string) (bool, error) {
	final, err := t.run(ctx, confirmModel{message: message, value: true})
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.value, nil
}

// selectModel is a single-choice list
type selectModel struct {
	message   string
	options   []string
	cursor    int
	done      bool
	cancelled bool
}

func newSelectModel(message string, options []string) selectModel {
	return selectModel{message: message, options: options}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	var sb strings.Builder
	sb.WriteString(questionStyle.Render("? "+m.message) + " ")
	if m.done {
		sb.WriteString(answerStyle.Render(m.options[m.cursor]) + "\n")
		return sb.String()
	}
	if m.cancelled {
		return sb.String() + "\n"
	}
	sb.WriteString(hintStyle.Render("(use arrow keys)") + "\n")
	for i, opt := range m.options {
		if i == m.cursor {
			sb.WriteString(cursorStyle.Render(" » "+opt) + "\n")
		} else {
			sb.WriteString("   " + opt + "\n")
		}
	}
	return sb.String()
}

// textModel is a free-text input with an optional default
type textModel struct {
	message   string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newTextModel(message, defaultValue string) textModel {
	ti := textinput.New()
	ti.Placeholder = defaultValue
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Focus()
	return textModel{message: message, input: ti}
}

func (m textModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m textModel) View() string {
	prefix := questionStyle.Render("? "+m.message) + " "
	if m.done {
		value := m.input.Value()
		if value == "" {
			value = m.input.Placeholder
		}
		return prefix + answerStyle.Render(value) + "\n"
	}
	if m.cancelled {
		return prefix + "\n"
	}
	return prefix + m.input.View() + "\n"
}

// confirmModel is a yes/no question defaulting to yes
type confirmModel struct {
	message   string
	value     bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch strings.ToLower(key.String()) {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.value = !m.value
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	prefix := questionStyle.Render("? "+m.message) + " "
	if m.done {
		answer := "No"
		if m.value {
			answer = "Yes"
		}
		return prefix + answerStyle.Render(answer) + "\n"
	}
	if m.cancelled {
		return prefix + "\n"
	}
	if m.value {
		return prefix + hintStyle.Render("(Y/n)") + "\n"
	}
	return prefix + hintStyle.Render("(y/N)") + "\n"
}

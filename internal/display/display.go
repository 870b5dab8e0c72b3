// Package display provides unified output formatting for the mle CLI.
// It visually separates chain orchestration messages from model output.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Display handles all CLI output with visual hierarchy
type Display struct {
	out       io.Writer
	theme     *Theme
	termWidth int
	noColor   bool
	repairing bool
	now       func() time.Time
}

// New creates a new Display instance writing to stdout
func New() *Display {
	return NewWithOptions(os.Stdout, false)
}

// NewWithOptions creates a Display with configuration
func NewWithOptions(out io.Writer, noColor bool) *Display {
	d := &Display{
		out:       out,
		termWidth: getTerminalWidth(),
		noColor:   noColor,
		now:       time.Now,
	}
	if noColor {
		d.theme = NoColorTheme()
	} else {
		d.theme = DefaultTheme()
	}
	return d
}

// getTerminalWidth returns the terminal width, defaulting to 80
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 40 {
		return 80
	}
	if width > 120 {
		return 120 // Cap at 120 for readability
	}
	return width
}

// Banner prints a boxed message titled MLE
func (d *Display) Banner(lines ...string) {
	d.Box("MLE", lines...)
}

// Box prints a boxed message with a custom title
func (d *Display) Box(title string, lines ...string) {
	if len(lines) == 0 {
		return
	}

	width := d.termWidth - 2
	titleLen := utf8.RuneCountInString(title) + 3 // "─ TITLE "
	remainingWidth := width - titleLen
	if remainingWidth < 0 {
		remainingWidth = 0
	}

	topLine := BoxTopLeft + BoxHorizontal + " " + title + " " + strings.Repeat(BoxHorizontal, remainingWidth) + BoxTopRight
	fmt.Fprintln(d.out, d.theme.Frame(topLine))

	for _, line := range lines {
		paddedLine := d.padRight(line, width-2)
		fmt.Fprintln(d.out, d.theme.Frame(BoxVertical)+" "+d.theme.Text(paddedLine)+" "+d.theme.Frame(BoxVertical))
	}

	bottomLine := BoxBottomLeft + strings.Repeat(BoxHorizontal, width) + BoxBottomRight
	fmt.Fprintln(d.out, d.theme.Frame(bottomLine))
}

// Status prints a single-line timestamped status message
func (d *Display) Status(symbol, message string) {
	timestamp := d.now().Format("[15:04:05]")
	fmt.Fprintf(d.out, "%s %s %s\n",
		d.theme.Frame(timestamp),
		symbol,
		d.theme.Text(message))
}

// Success prints a success message with green checkmark
func (d *Display) Success(message string) {
	d.Status(d.theme.Success(SymbolSuccess), message)
}

// Error prints an error message with red X
func (d *Display) Error(message string) {
	d.Status(d.theme.Error(SymbolError), message)
}

// Warning prints a warning message with yellow triangle
func (d *Display) Warning(message string) {
	d.Status(d.theme.Warning(SymbolWarning), message)
}

// Info prints a labelled message
func (d *Display) Info(label, message string) {
	d.Status(d.theme.Info(label+":"), message)
}

// Working announces a step that may take a while
func (d *Display) Working(message string) {
	d.Status(d.theme.Info(SymbolWorking), message)
}

// Resume prints a resume message with an arrow
func (d *Display) Resume(message string) {
	d.Status(d.theme.Info(SymbolResume), message)
}

// Println prints a plain line
func (d *Display) Println(message string) {
	fmt.Fprintln(d.out, message)
}

// TaskStart prints the banner for the task being worked on
func (d *Display) TaskStart(name string, index, total int) {
	d.repairing = false
	d.SectionBreak()
	banner := fmt.Sprintf(">>> TASK %d/%d: %s <<<", index+1, total, name)
	fmt.Fprintf(d.out, "%s%s\n\n", IndentModel, d.theme.Heading(banner))
}

// SectionBreak prints a horizontal separator between tasks
func (d *Display) SectionBreak() {
	fmt.Fprintln(d.out, d.theme.Separator(strings.Repeat(SectionBreak, d.termWidth)))
}

// Duration prints how long a command ran
func (d *Display) Duration(dur time.Duration) {
	fmt.Fprintf(d.out, "%s%s\n", IndentModel, d.theme.Dim("Duration: "+dur.Round(time.Second).String()))
}

// RunCommand announces a validation or install command
func (d *Display) RunCommand(command string) {
	d.Status(d.theme.Run(SymbolRun), d.theme.Run(command))
}

// RepairRound announces a fix attempt. Streamed output switches to the
// repair gutter until the next task starts.
func (d *Display) RepairRound(exitCode, attempt, budget int) {
	d.repairing = true
	d.Status(d.theme.Repair(SymbolResume),
		fmt.Sprintf("Run failed with exit code %d, debugging the script (%d/%d)...", exitCode, attempt, budget))
}

// Markdown renders markdown for the terminal; plain text is printed when
// colors are off or rendering fails
func (d *Display) Markdown(md string) {
	if d.noColor {
		fmt.Fprintln(d.out, md)
		return
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(d.termWidth-4),
	)
	if err != nil {
		fmt.Fprintln(d.out, md)
		return
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		fmt.Fprintln(d.out, md)
		return
	}
	fmt.Fprint(d.out, rendered)
}

// Theme returns the current theme for external use
func (d *Display) Theme() *Theme {
	return d.theme
}

// padRight pads a string to the specified width
func (d *Display) padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}

// Truncate truncates text to max length with ellipsis
func Truncate(s string, max int) string {
	s = CleanText(s)
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// CleanText removes newlines and collapses spaces
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

package display

import "github.com/fatih/color"

// Box drawing characters
const (
	BoxTopLeft     = "┌"
	BoxTopRight    = "┐"
	BoxBottomLeft  = "└"
	BoxBottomRight = "┘"
	BoxHorizontal  = "─"
	BoxVertical    = "│"
	SectionBreak   = "━"
)

// Status symbols
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolResume  = "↻"
	SymbolPending = "○"
	SymbolCurrent = "→"
	SymbolWorking = "…"
	SymbolRun     = "▶"
)

// Gutters mark streamed model output. A repair round gets its own gutter so
// a fix is never mistaken for the first draft, even without colors.
const (
	GutterGenerate = "▌"
	GutterRepair   = "┆"
	IndentModel    = "  "
)

type styleFunc func(a ...interface{}) string

// Theme is the palette of one terminal session
type Theme struct {
	// Frame is timestamps, boxes and task banners; Text is status prose
	Frame   styleFunc
	Heading styleFunc
	Text    styleFunc

	// Generate and Repair color the stream gutter, Output the streamed code
	Generate styleFunc
	Repair   styleFunc
	Output   styleFunc

	// Run marks validation and install commands
	Run styleFunc

	// KindCode and KindChoice label task kinds in plans and progress
	KindCode   styleFunc
	KindChoice styleFunc

	Success styleFunc
	Error   styleFunc
	Warning styleFunc
	Info    styleFunc

	Bold      styleFunc
	Dim       styleFunc
	Separator styleFunc
}

// DefaultTheme is a blue frame with green first drafts and amber repairs
func DefaultTheme() *Theme {
	return &Theme{
		Frame:   color.New(color.FgBlue).SprintFunc(),
		Heading: color.New(color.FgHiBlue, color.Bold).SprintFunc(),
		Text:    color.New(color.Reset).SprintFunc(),

		Generate: color.New(color.FgGreen).SprintFunc(),
		Repair:   color.New(color.FgHiYellow).SprintFunc(),
		Output:   color.New(color.FgHiWhite).SprintFunc(),

		Run: color.New(color.FgHiMagenta).SprintFunc(),

		KindCode:   color.New(color.FgCyan).SprintFunc(),
		KindChoice: color.New(color.FgMagenta).SprintFunc(),

		Success: color.New(color.FgGreen, color.Bold).SprintFunc(),
		Error:   color.New(color.FgRed, color.Bold).SprintFunc(),
		Warning: color.New(color.FgYellow).SprintFunc(),
		Info:    color.New(color.FgCyan).SprintFunc(),

		Bold:      color.New(color.Bold).SprintFunc(),
		Dim:       color.New(color.FgHiBlack).SprintFunc(),
		Separator: color.New(color.FgBlue).SprintFunc(),
	}
}

// NoColorTheme leaves every string as is (--no-color, tests)
func NoColorTheme() *Theme {
	plain := func(a ...interface{}) string {
		if len(a) == 0 {
			return ""
		}
		if s, ok := a[0].(string); ok {
			return s
		}
		return ""
	}
	return &Theme{
		Frame: plain, Heading: plain, Text: plain,
		Generate: plain, Repair: plain, Output: plain,
		Run:      plain,
		KindCode: plain, KindChoice: plain,
		Success: plain, Error: plain, Warning: plain, Info: plain,
		Bold: plain, Dim: plain, Separator: plain,
	}
}

// Kind styles a task kind label
func (t *Theme) Kind(kind string) string {
	if kind == "multiple_choice" {
		return t.KindChoice(kind)
	}
	return t.KindCode(kind)
}

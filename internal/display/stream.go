package display

import (
	"fmt"
	"strings"
)

// StreamPrinter echoes streamed model fragments under a gutter as they
// arrive. It satisfies llm.StreamObserver.
type StreamPrinter struct {
	d         *Display
	lineStart bool
	render    bool
}

// NewStreamPrinter creates a printer; when render is set the finished
// response is re-rendered as markdown after the stop marker
func (d *Display) NewStreamPrinter(render bool) *StreamPrinter {
	return &StreamPrinter{d: d, lineStart: true, render: render}
}

// OnDelta prints one fragment
func (p *StreamPrinter) OnDelta(delta, _ string) {
	lines := strings.SplitAfter(delta, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if p.lineStart {
			fmt.Fprint(p.d.out, p.gutter()+" ")
		}
		fmt.Fprint(p.d.out, p.d.theme.Output(line))
		p.lineStart = strings.HasSuffix(line, "\n")
	}
}

// OnStop terminates the streamed block
func (p *StreamPrinter) OnStop(text string) {
	if !p.lineStart {
		fmt.Fprintln(p.d.out)
		p.lineStart = true
	}
	if p.render && strings.TrimSpace(text) != "" {
		p.d.SectionBreak()
		p.d.Markdown(text)
	}
}

func (p *StreamPrinter) gutter() string {
	if p.d.repairing {
		return p.d.theme.Repair(GutterRepair)
	}
	return p.d.theme.Generate(GutterGenerate)
}

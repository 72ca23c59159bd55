package sim

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// ColorTracer prints lock and run events in color.
type ColorTracer struct {
	w     io.Writer
	enter *color.Color
	leave *color.Color
}

func NewColorTracer(w io.Writer) *ColorTracer {
	return &ColorTracer{
		w:     w,
		enter: color.New(color.FgCyan),
		leave: color.New(color.FgGreen),
	}
}

func (t *ColorTracer) Tracef(format string, args ...any) {
	c := t.enter
	if strings.HasSuffix(format, "leave") {
		c = t.leave
	}
	c.Fprintf(t.w, format+"\n", args...)
}

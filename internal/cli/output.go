package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// printer writes human-readable command output.
type printer struct {
	w io.Writer
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) keyValue(key string, value any) {
	color.New(color.Bold).Fprintf(p.w, "%s: ", key)
	fmt.Fprintln(p.w, value)
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) pass(msg string) {
	color.New(color.FgGreen).Fprintln(p.w, "PASS "+msg)
}

func (p *printer) fail(msg string) {
	color.New(color.FgRed).Fprintln(p.w, "FAIL "+msg)
}

func (p *printer) summary(ok bool, msg string) {
	if ok {
		color.New(color.FgGreen, color.Bold).Fprintln(p.w, msg)
		return
	}
	color.New(color.FgRed, color.Bold).Fprintln(p.w, msg)
}

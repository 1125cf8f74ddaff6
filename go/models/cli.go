package models

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

const usageWidth = 80

// flagLine is one row of a usage table: "-name type", the default and the
// usage text.
type flagLine struct {
	name, def, usage string
}

func newFlagLine(f *flag.Flag) flagLine {
	typ, usage := flag.UnquoteUsage(f)
	name := "-" + f.Name
	if typ != "" {
		name += " " + typ
	}
	def := ""
	if f.DefValue != "" && f.DefValue != "[]" {
		def = "(" + f.DefValue + ")"
	}
	return flagLine{name, def, usage}
}

// wrap splits s into lines of at most width, breaking on spaces or
// newlines when it can.
func wrap(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	var out []string
	for len(s) > width {
		cut := strings.LastIndexAny(s[:width], " \n")
		if cut <= 0 {
			out = append(out, s[:width])
			s = s[width:]
			continue
		}
		out = append(out, s[:cut])
		s = s[cut+1:]
	}
	return append(out, s)
}

// PrintFlags writes flags as an aligned table of name and type, default
// and usage, wrapping usage text at 80 columns.
func PrintFlags(w io.Writer, flags []*flag.Flag) {
	lines := make([]flagLine, len(flags))
	wname, wdef := 0, 0
	for i, f := range flags {
		l := newFlagLine(f)
		if len(l.name) > wname {
			wname = len(l.name)
		}
		if len(l.def) > wdef {
			wdef = len(l.def)
		}
		lines[i] = l
	}
	lead := 2 + wname + 1 + wdef + 1
	lpad := strings.Repeat(" ", lead)
	for _, l := range lines {
		for i, text := range wrap(l.usage, usageWidth-lead) {
			if i == 0 {
				fmt.Fprintf(w, "  %-*s %-*s %s\n", wname, l.name, wdef, l.def, text)
			} else {
				fmt.Fprintf(w, "%s%s\n", lpad, text)
			}
		}
	}
}

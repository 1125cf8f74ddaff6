package models

import (
	"fmt"
	"strings"

	"github.com/mgutz/ansi"
)

var chCode = ansi.ColorCode("green")
var chData = ansi.ColorCode("cyan")
var chBss = ansi.ColorCode("blue")
var chWarn = ansi.ColorCode("red+b")

func colorPad(s, color string, pad int) string {
	length := len(s)
	if color != "" {
		s = color + s + ansi.Reset
	}
	if length < pad {
		s = strings.Repeat(" ", pad-length) + s
	}
	return s
}

// LoadStatus renders a summary of a loaded image: the header line, the
// section layout and any warnings raised while loading.
type LoadStatus struct {
	L Loader
}

func (s *LoadStatus) sectionColor(sec *Section) string {
	switch {
	case sec.Flags.Code:
		return chCode
	case sec.Flags.Bss:
		return chBss
	case sec.Flags.Data:
		return chData
	}
	return ""
}

func (s *LoadStatus) String(color bool) string {
	l := s.L
	var lines []string
	lines = append(lines, fmt.Sprintf("%s %s %d-bit %s, entry 0x%x", l.OS(), l.Arch(), l.Bits(), l.ByteOrder(), l.Entry()))

	sections := l.Sections().All()
	namePad := 0
	for _, sec := range sections {
		if len(sec.Name) > namePad {
			namePad = len(sec.Name)
		}
	}
	for _, sec := range sections {
		if sec.Size == 0 {
			continue
		}
		c := ""
		if color {
			c = s.sectionColor(sec)
		}
		name := colorPad(sec.Name, c, namePad)
		lines = append(lines, fmt.Sprintf("  %s 0x%08x-0x%08x [%s]", name, sec.Addr, sec.Addr+sec.Size, sec.Flags))
	}
	if ext, ok := l.(interface{ FirstExtern() uint64 }); ok {
		lines = append(lines, fmt.Sprintf("  externs from 0x%08x", ext.FirstExtern()))
	}
	for _, w := range l.Warnings() {
		label := "warning:"
		if color {
			label = chWarn + label + ansi.Reset
		}
		lines = append(lines, fmt.Sprintf("  %s %v", label, w))
	}
	return strings.Join(lines, "\n") + "\n"
}

package cmd

import (
	"fmt"
	"io"

	"github.com/mgutz/ansi"

	"github.com/lunixbochs/elfcorn/go/models"
)

type Context struct {
	io.ReadWriter
	L models.Loader

	Color    bool
	Demangle bool
	// Config supplies LoadPrefix for resolving libraries. It may be nil.
	Config *models.Config
}

type writeOnly struct{ io.Writer }

func (writeOnly) Read(p []byte) (int, error) { return 0, io.EOF }

// NewContext binds commands to l, writing to w. Commands run this way
// cannot read input.
func NewContext(w io.Writer, l models.Loader, config *models.Config) *Context {
	config = config.Init()
	return &Context{
		ReadWriter: writeOnly{w},
		L:          l,
		Color:      config.Color,
		Demangle:   config.Demangle,
		Config:     config,
	}
}

func (c *Context) Printf(format string, a ...interface{}) (n int, err error) {
	return fmt.Fprintf(c, format, a...)
}

// Colorize wraps s in an ansi style when color output is enabled.
func (c *Context) Colorize(s, style string) string {
	if !c.Color {
		return s
	}
	return ansi.Color(s, style)
}

func (c *Context) SymName(sym *models.Symbol) string {
	if c.Demangle {
		return models.Demangle(sym.Name)
	}
	return sym.Name
}

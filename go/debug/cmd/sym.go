package cmd

import (
	"strings"

	"github.com/lunixbochs/elfcorn/go/models"
)

func (c *Context) printSym(s *models.Symbol) {
	name := c.SymName(s)
	var tags []string
	if s.Attrs.Imported {
		name = c.Colorize(name, "yellow")
		tags = append(tags, "import")
	}
	if s.Attrs.Function {
		tags = append(tags, "func")
	}
	if s.Attrs.SourceFile != "" {
		tags = append(tags, s.Attrs.SourceFile)
	}
	c.Printf("  0x%08x %s", s.Start, name)
	if len(tags) > 0 {
		c.Printf(" [%s]", strings.Join(tags, " "))
	}
	c.Printf("\n")
}

var SymCmd = cmd(&Command{
	Name: "sym",
	Desc: "Look up a symbol by name.",
	Run: func(c *Context, name string) error {
		s := c.L.Symbols().FindName(name)
		if s == nil {
			c.Printf("symbol %q not found\n", name)
			return nil
		}
		c.printSym(s)
		return nil
	},
})

var SymsCmd = cmd(&Command{
	Name: "syms",
	Desc: "List symbols, optionally filtered by substring.",
	Run: func(c *Context, filter ...string) error {
		for _, s := range c.L.Symbols().SortedByName() {
			match := len(filter) == 0
			for _, f := range filter {
				if strings.Contains(s.Name, f) {
					match = true
					break
				}
			}
			if match {
				c.printSym(s)
			}
		}
		return nil
	},
})

var NearCmd = cmd(&Command{
	Name: "near",
	Desc: "Find the symbol containing an address.",
	Run: func(c *Context, addr uint64) error {
		name, err := c.L.Symbolicate(addr)
		if err != nil {
			return err
		}
		if name == "" {
			c.Printf("0x%x: no symbol\n", addr)
			return nil
		}
		if c.Demangle {
			// mangled names never contain '+'
			if i := strings.Index(name, "+"); i > 0 {
				name = models.Demangle(name[:i]) + name[i:]
			} else {
				name = models.Demangle(name)
			}
		}
		c.Printf("0x%x: %s\n", addr, name)
		return nil
	},
})

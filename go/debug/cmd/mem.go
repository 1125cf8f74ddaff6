package cmd

import (
	"github.com/lunixbochs/elfcorn/go/models"
)

var SectionsCmd = cmd(&Command{
	Name: "sections",
	Desc: "Display sections.",
	Run: func(c *Context) error {
		for _, s := range c.L.Sections().All() {
			line := s.String()
			if s.Size == 0 {
				line = c.Colorize(line, "black+h")
			}
			c.Printf("  %s\n", line)
		}
		return nil
	},
})

var SegmentsCmd = cmd(&Command{
	Name: "segments",
	Desc: "Display PT_LOAD segments.",
	Run: func(c *Context) error {
		segs, err := c.L.Segments()
		if err != nil {
			return err
		}
		for _, s := range segs {
			c.Printf("  %s\n", s.String())
		}
		return nil
	},
})

var MemCmd = cmd(&Command{
	Name: "mem",
	Desc: "Hexdump memory at a loaded address.",
	Run: func(c *Context, addr, size uint64) error {
		mem, err := c.L.ReadAddr(addr, size)
		if err != nil {
			return err
		}
		for _, line := range models.HexDump(addr, mem) {
			c.Printf("  %s\n", line)
		}
		return nil
	},
})

var HostCmd = cmd(&Command{
	Name: "host",
	Desc: "Translate a loaded address to a file offset.",
	Run: func(c *Context, addr uint64) error {
		off, err := c.L.NativeToHostOffset(addr)
		if err != nil {
			return err
		}
		c.Printf("0x%x -> file offset 0x%x\n", addr, off)
		return nil
	},
})

var RelocCmd = cmd(&Command{
	Name: "reloc",
	Desc: "Check whether a relocation patches an address.",
	Run: func(c *Context, addr uint64) error {
		c.Printf("0x%x: %v\n", addr, c.L.IsRelocationAt(addr))
		return nil
	},
})

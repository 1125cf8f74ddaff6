package cmd

import (
	"path/filepath"
)

// libDirs are searched in order for DT_NEEDED names under LoadPrefix.
var libDirs = []string{"/lib", "/usr/lib"}

// resolveLib finds a needed library inside the configured load prefix.
func (c *Context) resolveLib(name string) (string, bool) {
	if c.Config == nil || c.Config.LoadPrefix == "" {
		return "", false
	}
	for _, dir := range libDirs {
		path := name
		if !filepath.IsAbs(name) {
			path = filepath.Join(dir, name)
		}
		if resolved := c.Config.PrefixPath(path, false); resolved != path {
			return resolved, true
		}
		if filepath.IsAbs(name) {
			break
		}
	}
	return "", false
}

var DepsCmd = cmd(&Command{
	Name: "deps",
	Desc: "List DT_NEEDED libraries, resolved under -prefix when set.",
	Run: func(c *Context) error {
		deps, err := c.L.Dependencies()
		if err != nil {
			return err
		}
		if len(deps) == 0 {
			c.Printf("  (statically linked)\n")
		}
		prefixed := c.Config != nil && c.Config.LoadPrefix != ""
		for _, dep := range deps {
			if !prefixed {
				c.Printf("  %s\n", dep)
			} else if path, ok := c.resolveLib(dep); ok {
				c.Printf("  %s => %s\n", dep, path)
			} else {
				c.Printf("  %s => %s\n", dep, c.Colorize("not found", "red"))
			}
		}
		return nil
	},
})

var InfoCmd = cmd(&Command{
	Name: "info",
	Desc: "Display the image header.",
	Run: func(c *Context) error {
		l := c.L
		c.Printf("  arch:    %s (%d-bit %s)\n", l.Arch(), l.Bits(), l.ByteOrder())
		c.Printf("  os:      %s\n", l.OS())
		if m, err := l.Machine(); err != nil {
			c.Printf("  machine: %s\n", c.Colorize(err.Error(), "red"))
		} else {
			c.Printf("  machine: %s\n", m)
		}
		c.Printf("  entry:   0x%x\n", l.Entry())
		if main, ok := l.MainEntry(); ok {
			c.Printf("  main:    0x%x\n", main)
		}
		if interp := l.Interp(); interp != "" {
			c.Printf("  interp:  %s\n", interp)
		}
		if start, end := l.DataSegment(); end > start {
			c.Printf("  data:    0x%x-0x%x\n", start, end)
		}
		c.Printf("  shared:  %v\n", l.IsSharedObject())
		for _, w := range l.Warnings() {
			c.Printf("  %s %v\n", c.Colorize("warning:", "red"), w)
		}
		return nil
	},
})

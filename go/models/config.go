package models

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultLoadBase is where sections without a native address get placed.
const DefaultLoadBase = 0x08000000

type Config struct {
	Color    bool
	Demangle bool
	Verbose  bool
	// LoadBase overrides DefaultLoadBase when non-zero.
	LoadBase uint64
	// LoadPrefix is a sysroot used to resolve dependency library paths.
	LoadPrefix string

	Output io.Writer
}

func (c *Config) Init() *Config {
	if c == nil {
		c = &Config{}
	}
	if c.Output == nil {
		c.Output = os.Stderr
	}
	if c.LoadBase == 0 {
		c.LoadBase = DefaultLoadBase
	}
	return c
}

// Debugf writes a log line to Output when Verbose is set.
func (c *Config) Debugf(format string, a ...interface{}) {
	if c == nil || !c.Verbose || c.Output == nil {
		return
	}
	fmt.Fprintf(c.Output, format+"\n", a...)
}

func (c *Config) resolveSymlink(path, target string, force bool) string {
	link, err := os.Lstat(target)
	if err == nil && link.Mode()&os.ModeSymlink != 0 {
		if linked, err := os.Readlink(target); err == nil {
			if !strings.HasPrefix(linked, "/") {
				return filepath.Join(filepath.Dir(target), linked)
			}
			return c.PrefixPath(linked, force)
		}
	}
	exists := !os.IsNotExist(err)
	if force || exists {
		return target
	}
	return path
}

// PrefixPath maps an absolute path (such as a DT_NEEDED library resolved
// against /lib) into LoadPrefix when the prefixed file exists.
func (c *Config) PrefixPath(path string, force bool) string {
	if c.LoadPrefix == "" {
		return path
	}
	target := path
	if filepath.IsAbs(path) {
		target = filepath.Join(c.LoadPrefix, path)
	}
	return c.resolveSymlink(path, target, force)
}

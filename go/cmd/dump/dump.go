package dump

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/cmd"
	"github.com/lunixbochs/elfcorn/go/models"
)

func Main(args []string) {
	c := cmd.NewLoaderCmd()
	var section *string
	var addr, size *uint64
	c.SetupFlags = func() error {
		section = c.Flags.String("section", ".text", "section to dump")
		addr = c.Flags.Uint64("addr", 0, "dump from this loaded address instead of a section")
		size = c.Flags.Uint64("size", 0x100, "bytes to dump with -addr")
		return nil
	}
	c.RunLoader = func(args []string) error {
		l := c.Loader
		start, n := *addr, *size
		if start == 0 {
			s := l.Sections().ByName(*section)
			if s == nil {
				return errors.Wrapf(models.ErrMissingSection, "%s", *section)
			}
			start, n = s.Addr, s.Size
		}
		mem, err := l.ReadAddr(start, n)
		if err != nil {
			return err
		}
		for _, line := range models.HexDump(start, mem) {
			fmt.Fprintln(c.Stdout, line)
		}
		return nil
	}
	c.Run(args)
}

func init() { cmd.Register("inspect", "dump", "hexdump a section or address range", Main) }

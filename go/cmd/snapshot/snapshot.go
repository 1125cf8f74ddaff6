package snapshot

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/cmd"
	"github.com/lunixbochs/elfcorn/go/models"
	"github.com/lunixbochs/elfcorn/go/models/snapshot"
)

func save(l models.Loader, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	if err := snapshot.Write(f, l); err != nil {
		return err
	}
	return errors.WithStack(f.Close())
}

func show(c *cmd.LoaderCmd, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	snap, err := snapshot.Read(f)
	if err != nil {
		return errors.Wrap(err, path)
	}
	h := snap.Header
	w := c.Stdout
	fmt.Fprintf(w, "%s %s %s, entry 0x%x\n", h.OS, h.Arch, h.Order, h.Entry)
	for _, s := range snap.Sections.All() {
		fmt.Fprintf(w, "  %s\n", s)
	}
	for _, s := range snap.Symbols.SortedByName() {
		name := s.Name
		if c.Config.Demangle {
			name = models.Demangle(name)
		}
		fmt.Fprintf(w, "  0x%08x %s\n", s.Start, name)
	}
	return nil
}

func Main(args []string) {
	c := cmd.NewLoaderCmd()
	c.ArgUsage = "<exe|snapshot>"
	var to *string
	var read *bool
	c.SetupFlags = func() error {
		to = c.Flags.String("to", "", "write a snapshot of <exe> to this file")
		read = c.Flags.Bool("read", false, "print the contents of a snapshot file")
		return nil
	}
	load := c.MakeLoader
	c.MakeLoader = func(path string) (models.Loader, error) {
		if *read {
			return nil, nil
		}
		return load(path)
	}
	c.RunLoader = func(args []string) error {
		if *read {
			return show(c, args[0])
		}
		if *to == "" {
			return errors.New("-to is required when saving a snapshot")
		}
		return save(c.Loader, *to)
	}
	c.Run(args)
}

func init() {
	cmd.Register("export", "snapshot", "save or print a compressed section and symbol snapshot", Main)
}

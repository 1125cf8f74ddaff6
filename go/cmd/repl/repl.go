package repl

import (
	"github.com/lunixbochs/elfcorn/go/cmd"
	"github.com/lunixbochs/elfcorn/go/ui"
)

func Main(args []string) {
	c := cmd.NewLoaderCmd()
	c.RunLoader = func(args []string) error {
		r, err := ui.NewRepl(c.Loader, c.Config)
		if err != nil {
			return err
		}
		return r.Run()
	}
	c.Run(args)
}

func init() { cmd.Register("inspect", "repl", "inspect an image interactively", Main) }

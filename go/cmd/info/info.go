package info

import (
	"strconv"

	"github.com/lunixbochs/elfcorn/go/cmd"
	dcmd "github.com/lunixbochs/elfcorn/go/debug/cmd"
	"github.com/lunixbochs/elfcorn/go/models"
)

func Main(args []string) {
	c := cmd.NewLoaderCmd()
	var syms, sections *bool
	var filter *string
	c.SetupFlags = func() error {
		syms = c.Flags.Bool("syms", false, "list symbols")
		sections = c.Flags.Bool("sections", false, "list every section, including empty ones")
		filter = c.Flags.String("match", "", "only list symbols containing this substring")
		return nil
	}
	c.RunLoader = func(args []string) error {
		l := c.Loader
		status := &models.LoadStatus{L: l}
		c.Stdout.Write([]byte(status.String(c.Config.Color)))

		ctx := dcmd.NewContext(c.Stdout, l, c.Config)
		lines := []string{"info", "deps"}
		if *sections {
			lines = append(lines, "sections")
		}
		if *filter != "" {
			lines = append(lines, "syms "+strconv.Quote(*filter))
		} else if *syms {
			lines = append(lines, "syms")
		}
		for _, line := range lines {
			ctx.Printf("\n%s:\n", ctx.Colorize(line, "default+b"))
			if err := dcmd.Run(ctx, line); err != nil {
				return err
			}
		}
		return nil
	}
	c.Run(args)
}

func init() {
	cmd.Register("inspect", "info", "describe the header, sections and symbols of an image", Main)
}

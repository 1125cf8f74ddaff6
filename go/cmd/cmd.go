package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"

	"github.com/lunixbochs/elfcorn/go/loader"
	"github.com/lunixbochs/elfcorn/go/models"
)

// LoaderCmd is the shared front end of every subcommand: it parses the
// common flags, builds a Config and loads the named image.
type LoaderCmd struct {
	Config *models.Config
	// Stdout is where subcommands write their results.
	Stdout io.Writer

	SetupFlags func() error
	MakeLoader func(path string) (models.Loader, error)
	RunLoader  func(args []string) error
	Teardown   func()

	// ArgUsage describes the positional arguments in the usage line.
	ArgUsage string

	Loader models.Loader
	Flags  *flag.FlagSet
}

func NewLoaderCmd() *LoaderCmd {
	fs := flag.NewFlagSet("cli", flag.ExitOnError)
	cmd := &LoaderCmd{Flags: fs, ArgUsage: "<exe>"}
	cmd.MakeLoader = func(path string) (models.Loader, error) {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.WithStack(err)
		}
		return loader.LoadFile(path, cmd.Config)
	}
	return cmd
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

func (c *LoaderCmd) PrintError(err error) {
	// print an error, and a stacktrace if available
	fmt.Fprintf(os.Stderr, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	if c.Config == nil || !c.Config.Verbose {
		return
	}
	if err, ok := err.(stackTracer); ok {
		// parse full path and method name for each stack frame
		var frames [][]string
		for _, f := range err.StackTrace() {
			fullpath := ""
			fileline := fmt.Sprintf("%s:%d", f, f)
			method := fmt.Sprintf("%n", f)

			frame := fmt.Sprintf("%+s", f)
			tmp := strings.SplitN(frame, "\n", 3)
			if len(tmp) == 2 {
				pathsplit := strings.Split(tmp[0], "/")
				method = pathsplit[len(pathsplit)-1]
				fullpath = strings.TrimSpace(tmp[1])
			}
			frames = append(frames, []string{fullpath, fileline, method})
			if method == "main.main" {
				break
			}
		}
		// calculate column widths
		widths := make([]int, 2)
		for _, f := range frames {
			for i, s := range f[:2] {
				if len(s) > widths[i] {
					widths[i] = len(s)
				}
			}
		}
		for _, f := range frames {
			for i := 0; i < 2; i++ {
				if widths[i] > 0 {
					pad := strings.Repeat(" ", widths[i]-len(f[i]))
					fmt.Fprintf(os.Stderr, "%s%s | ", f[i], pad)
				}
			}
			fmt.Fprintf(os.Stderr, "%s()\n", f[2])
		}
	}
}

func (c *LoaderCmd) Run(argv []string) {
	fs := c.Flags
	verbose := fs.Bool("v", false, "verbose output")
	prefix := fs.String("prefix", "", "library load prefix")
	base := fs.Uint64("base", 0, "load base for sections without an address (0 means 0x8000000)")
	color := fs.Bool("color", isatty.IsTerminal(os.Stdout.Fd()), "colorize output")
	demangle := fs.Bool("demangle", false, "demangle symbols using c++filt")
	outfile := fs.String("o", "", "redirect debugging output to file (default stderr)")
	cpuprofile := fs.String("cpuprofile", "", "write cpu profile to <file>")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] %s\n\nOptions:\n", argv[0], c.ArgUsage)
		var flags []*flag.Flag
		fs.VisitAll(func(f *flag.Flag) { flags = append(flags, f) })
		models.PrintFlags(os.Stderr, flags)
	}
	if c.SetupFlags != nil {
		if err := c.SetupFlags(); err != nil {
			panic(err)
		}
	}
	fs.Parse(argv[1:])

	args := fs.Args()
	if len(args) < 1 {
		fs.Usage()
		os.Exit(1)
	}

	absPrefix := ""
	if *prefix != "" {
		var err error
		if absPrefix, err = filepath.Abs(*prefix); err != nil {
			panic(err)
		}
	}
	c.Config = &models.Config{
		Color:      *color,
		Demangle:   *demangle,
		Verbose:    *verbose,
		LoadBase:   *base,
		LoadPrefix: absPrefix,
	}
	if *outfile != "" {
		out, err := os.OpenFile(*outfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			panic(err)
		}
		defer out.Close()
		c.Config.Output = out
	}
	c.Config.Init()
	if c.Stdout == nil {
		if *color {
			c.Stdout = colorable.NewColorableStdout()
		} else {
			c.Stdout = os.Stdout
		}
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			panic(err)
		}
		pprof.StartCPUProfile(f)
	}
	// won't run on os.Exit(), so it's manually run below
	teardown := func() {
		if *cpuprofile != "" {
			pprof.StopCPUProfile()
		}
		if c.Teardown != nil {
			c.Teardown()
		}
	}

	l, err := c.MakeLoader(args[0])
	if err != nil {
		c.PrintError(err)
		teardown()
		os.Exit(1)
	}
	c.Loader = l
	if c.RunLoader != nil {
		err = c.RunLoader(args)
	}
	teardown()
	if err != nil {
		c.PrintError(err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

type command struct {
	group, name, desc string
	main              func(args []string)
}

// registry maps subcommand names to their entry points.
type registry struct {
	commands map[string]*command
	groups   []string
}

var commands = &registry{commands: make(map[string]*command)}

// Register adds a subcommand under group. Groups are listed in the order
// they were first seen.
func Register(group, name, desc string, main func(args []string)) {
	commands.add(&command{group, name, desc, main})
}

func (r *registry) add(c *command) {
	found := false
	for _, g := range r.groups {
		if g == c.group {
			found = true
			break
		}
	}
	if !found {
		r.groups = append(r.groups, c.group)
	}
	r.commands[c.name] = c
}

// lookup resolves name exactly or as an unambiguous prefix.
func (r *registry) lookup(name string) (*command, error) {
	if c, ok := r.commands[name]; ok {
		return c, nil
	}
	var hits []string
	for n := range r.commands {
		if strings.HasPrefix(n, name) {
			hits = append(hits, n)
		}
	}
	switch len(hits) {
	case 0:
		return nil, fmt.Errorf("Command '%s' not found.", name)
	case 1:
		return r.commands[hits[0]], nil
	}
	sort.Strings(hits)
	return nil, fmt.Errorf("Command '%s' is ambiguous: %s", name, strings.Join(hits, ", "))
}

func (r *registry) usage(w io.Writer, prog string) {
	pad := 0
	for n := range r.commands {
		if len(n) > pad {
			pad = len(n)
		}
	}
	for i, g := range r.groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s commands:\n", strings.ToUpper(g[:1])+g[1:])
		var names []string
		for n, c := range r.commands {
			if c.group == g {
				names = append(names, n)
			}
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(w, "  %-*s  %s\n", pad, n, r.commands[n].desc)
		}
	}
	fmt.Fprintf(w, "\nExample: %s info -color bins/x86.linux.elf\n\n", prog)
}

func Main() {
	if len(os.Args) < 2 {
		commands.usage(os.Stderr, os.Args[0])
		os.Exit(1)
	}
	cmd, err := commands.lookup(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n\n", err)
		commands.usage(os.Stderr, os.Args[0])
		os.Exit(1)
	}
	args := append([]string{os.Args[0] + " " + cmd.name}, os.Args[2:]...)
	cmd.main(args)
}

package cmd

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/lunixbochs/argjoy"
	"github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

type Command struct {
	Name string
	Desc string
	Run  interface{}
}

var Commands = make(map[string]*Command)

func cmd(c *Command) *Command {
	fn := reflect.ValueOf(c.Run)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		panic(fmt.Sprintf("Command.Run must be a func: got (%T) %#v\n", c.Run, c.Run))
	}
	Commands[c.Name] = c
	return c
}

var aj = argjoy.NewArgjoy()

func init() {
	aj.Register(contextCodec)
	aj.Register(wordCodec)
}

func contextCodec(arg interface{}, vals []interface{}) error {
	if v, ok := arg.(**Context); ok {
		if c, ok := vals[0].(*Context); ok {
			*v = c
			return nil
		}
	}
	return argjoy.NoMatch
}

// wordCodec fills string and integer parameters from command words.
// Integers accept any strconv base prefix, so 0x8048000 works.
func wordCodec(arg interface{}, vals []interface{}) error {
	s, ok := vals[0].(string)
	if !ok {
		return argjoy.NoMatch
	}
	bad := func() error { return errors.Errorf("invalid number %q", s) }
	switch v := arg.(type) {
	case *string:
		*v = s
	case *uint64:
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return bad()
		}
		*v = n
	case *uint32:
		n, err := strconv.ParseUint(s, 0, 32)
		if err != nil {
			return bad()
		}
		*v = uint32(n)
	case *int:
		n, err := strconv.ParseInt(s, 0, 0)
		if err != nil {
			return bad()
		}
		*v = int(n)
	default:
		return argjoy.NoMatch
	}
	return nil
}

func Run(c *Context, line string) error {
	args, err := shellwords.Parse(line)
	if err != nil {
		c.Printf("parse error: %v\n", err)
		return nil
	}
	if len(args) == 0 {
		return nil
	}
	name, args := args[0], args[1:]
	if cmd, ok := Commands[name]; ok {
		vals := make([]interface{}, 0, len(args)+1)
		vals = append(vals, c)
		for _, arg := range args {
			vals = append(vals, arg)
		}
		out, err := aj.Call(cmd.Run, vals...)
		if err != nil {
			c.Printf("error: %v\n", err)
		}
		if len(out) > 0 {
			if err, ok := out[0].(error); ok && err != nil {
				c.Printf("error: %v\n", err)
			}
		}
	} else {
		c.Printf("command not found.\n")
	}
	return nil
}

var HelpCmd = cmd(&Command{
	Name: "help",
	Desc: "List commands.",
	Run: func(c *Context) error {
		names := make([]string, 0, len(Commands))
		for name := range Commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			c.Printf("  %-10s %s\n", name, Commands[name].Desc)
		}
		return nil
	},
})

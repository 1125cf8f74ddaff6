package ui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/shibukawa/configdir"

	"github.com/lunixbochs/elfcorn/go/debug/cmd"
	"github.com/lunixbochs/elfcorn/go/models"
)

type Repl struct {
	l       models.Loader
	rl      *readline.Instance
	context *cmd.Context
}

type rlReadWriter struct {
	io.Reader
	io.Writer
}

func NewRepl(l models.Loader, config *models.Config) (*Repl, error) {
	config = config.Init()
	// get history path
	configDirs := configdir.New("elfcorn", "repl")
	cacheDir := configDirs.QueryCacheFolder()
	historyPath := ""
	if err := cacheDir.MkdirAll(); err == nil {
		historyPath = filepath.Join(cacheDir.Path, "history")
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "\n",
		HistoryFile:     historyPath,
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, err
	}
	context := &cmd.Context{
		ReadWriter: &rlReadWriter{rl.Config.Stdin, rl.Stdout()},
		L:          l,
		Color:      config.Color,
		Demangle:   config.Demangle,
		Config:     config,
	}
	return &Repl{l: l, rl: rl, context: context}, nil
}

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for name := range cmd.Commands {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func (r *Repl) setPrompt() {
	prompt := fmt.Sprintf("%s> ", r.l.Arch())
	if main, ok := r.l.MainEntry(); ok {
		prompt = fmt.Sprintf("%s@%#x> ", r.l.Arch(), main)
	}
	r.rl.SetPrompt(prompt)
}

// Run reads commands until EOF.
func (r *Repl) Run() error {
	defer r.Close()
	r.setPrompt()
	for {
		line, err := r.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := cmd.Run(r.context, line); err != nil {
			return err
		}
	}
}

func (r *Repl) Close() {
	r.rl.Close()
}

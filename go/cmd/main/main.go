package main

import (
	"github.com/lunixbochs/elfcorn/go/cmd"

	_ "github.com/lunixbochs/elfcorn/go/cmd/info"

	_ "github.com/lunixbochs/elfcorn/go/cmd/dump"
	_ "github.com/lunixbochs/elfcorn/go/cmd/repl"
	_ "github.com/lunixbochs/elfcorn/go/cmd/snapshot"
)

func main() { cmd.Main() }

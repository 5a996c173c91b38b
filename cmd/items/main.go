package main

import (
	"os"

	"github.com/idilsaglam/items/internal/cli"
	"github.com/idilsaglam/items/internal/ui"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(cli.ExitCode(err))
	}
}

package main

import (
	"os"

	"github.com/Makepad-fr/tada/internal/cli"
	"github.com/Makepad-fr/tada/internal/ui"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(cli.ExitCode(err))
	}
}

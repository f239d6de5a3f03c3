package main

import (
	"os"

	"github.com/chris/snug/cmd/snug/commands"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	root := commands.NewRootCmd(version)
	if err := root.Execute(); err != nil {
		os.Exit(commands.Report(root.ErrOrStderr(), err))
	}
}

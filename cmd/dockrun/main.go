package main

import (
	"os"

	"github.com/dockrun/dockrun/internal/cli"
	"github.com/dockrun/dockrun/internal/ui"
)

func main() {
	code, err := cli.Execute()
	if err != nil {
		ui.Fail("%v", err)
		os.Exit(1)
	}
	os.Exit(code)
}

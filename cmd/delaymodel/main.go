// Command delaymodel writes VLBI interferometer model tables.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/delaymodel/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err == nil {
		return
	}

	// Commands report their own failures; cobra's flag and argument errors
	// are printed here.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}

// Command rchart operates a local clinical record database.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/rchart/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rchart:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// Command sieve classifies positions of the counting sequence with ordered
// divisor rules.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/sieve/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

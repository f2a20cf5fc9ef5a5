// Command nitrassic is the CLI front end for the compiler: it drives the
// lex/parse/resolve/compile/run pipeline stage by stage for debugging, or
// end to end through pkg/engine for actually running a script.
package main

import (
	"fmt"
	"os"

	"github.com/bablakeluke/nitrassic-go/cmd/nitrassic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "nitrassic",
	Short: "An ahead-of-time ECMAScript-subset compiler",
	Long: `nitrassic lexes, parses and type-specializes an ECMAScript-subset
script, then emits and runs a direct-dispatch internal/ilvm program: every
function is compiled separately per call-site argument type vector.
Property access on objects is a dynamic property lookup; it is not
lowered to typed field loads.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

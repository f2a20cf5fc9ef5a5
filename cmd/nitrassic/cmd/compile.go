package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bablakeluke/nitrassic-go/pkg/engine"
)

var disassemble bool

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a script's top-level unit and any specializations it triggers",
	Long: `Compile a script through the full lex/parse/resolve/codegen pipeline
and report success or the errors that stopped it, without running the
result.

Every user function is compiled lazily, once per distinct argument-type
vector it is actually called with — so "compile" alone, with no call sites
exercised, only compiles the top-level unit itself. Pair with --disassemble
to see the internal/ilvm instructions generated for it.

Examples:
  nitrassic compile script.js
  nitrassic compile script.js --disassemble`,
	Args: cobra.ExactArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().BoolVar(&disassemble, "disassemble", false, "print the compiled unit's internal/ilvm disassembly")
}

func compileScript(_ *cobra.Command, args []string) error {
	e, err := engine.New(engine.WithILAnalysis(disassemble))
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer e.Close()

	result, err := e.Compile(args[0])
	if err != nil {
		return err
	}
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("compilation failed with %d error(s)", len(result.Errors))
	}

	if disassemble && result.Disassembly != "" {
		fmt.Printf("== Disassembly (%s) ==\n%s\n", args[0], result.Disassembly)
	}
	fmt.Printf("Compiled %s\n", args[0])
	return nil
}

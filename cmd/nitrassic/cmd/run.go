package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bablakeluke/nitrassic-go/pkg/engine"
)

var (
	runEvalExpr string
	strict      bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a script file or expression",
	Long: `Execute a script from a file or an inline expression.

Examples:
  nitrassic run script.js
  nitrassic run -e "return 1 + 2;"
  nitrassic run --strict script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline source instead of reading a file")
	runCmd.Flags().BoolVar(&strict, "strict", false, "force every top-level unit to resolve in strict mode")
}

func runScript(_ *cobra.Command, args []string) error {
	e, err := engine.New(engine.WithStrict(strict))
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer e.Close()

	var result *engine.Result
	if runEvalExpr != "" {
		result, err = e.Eval(runEvalExpr)
	} else if len(args) == 1 {
		result, err = e.Load(args[0])
	} else {
		return fmt.Errorf("either provide a file path or use -e/--eval for inline source")
	}
	if err != nil {
		return err
	}

	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("execution failed")
	}

	if !result.Value.IsUndefined() {
		fmt.Println(result.Value.String())
	}
	return nil
}

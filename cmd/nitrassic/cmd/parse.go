package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bablakeluke/nitrassic-go/internal/cerr"
	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a script and print its AST",
	Long: `Parse a script into internal/ast and print its tree representation.

Examples:
  nitrassic parse script.js
  nitrassic parse -e "function f(x) { return x + 1; }"`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func parseScript(_ *cobra.Command, args []string) error {
	src, path, err := readSource(args)
	if err != nil {
		return err
	}

	prog, errs := parser.ParseProgram(lexer.New(src, path))
	if len(errs) > 0 {
		for _, pe := range errs {
			pe.Pos.Path = path
		}
		compileErrs := make([]*cerr.CompileError, len(errs))
		for i, pe := range errs {
			compileErrs[i] = cerr.FromParseError(pe, src)
		}
		fmt.Fprint(os.Stderr, cerr.FormatAll(compileErrs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(errs))
	}

	fmt.Println(prog.String())
	return nil
}

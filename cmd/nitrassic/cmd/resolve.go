package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bablakeluke/nitrassic-go/internal/cache"
	"github.com/bablakeluke/nitrassic-go/internal/cerr"
	"github.com/bablakeluke/nitrassic-go/internal/ctx"
	"github.com/bablakeluke/nitrassic-go/internal/dispatch"
	"github.com/bablakeluke/nitrassic-go/internal/ilvm"
	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/parser"
	"github.com/bablakeluke/nitrassic-go/internal/proto"
	"github.com/bablakeluke/nitrassic-go/internal/scope"
	"github.com/bablakeluke/nitrassic-go/internal/stdproto"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [file]",
	Short: "Parse and name-resolve a script, without generating or running code",
	Long: `Run a script through the parser and the scope/type resolution pass
(internal/ctx) and report any reference or type errors, without emitting or
running internal/ilvm code.

Examples:
  nitrassic resolve script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: resolveScript,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func resolveScript(_ *cobra.Command, args []string) error {
	src, path, err := readSource(args)
	if err != nil {
		return err
	}

	prog, parseErrs := parser.ParseProgram(lexer.New(src, path))
	if len(parseErrs) > 0 {
		compileErrs := make([]*cerr.CompileError, len(parseErrs))
		for i, pe := range parseErrs {
			pe.Pos.Path = path
			compileErrs[i] = cerr.FromParseError(pe, src)
		}
		fmt.Fprint(os.Stderr, cerr.FormatAll(compileErrs, true))
		return fmt.Errorf("parsing failed with %d error(s)", len(parseErrs))
	}

	ilprog := ilvm.NewProgram()
	protos := stdproto.New(ilprog)
	c := cache.New(ilprog.NewEmitterFactory(), nil)
	resolver := dispatch.New(c, protos)
	c.Resolver = resolver

	global := scope.NewObjectScope(nil, scope.KindGlobalObject, proto.New("global", nil), true, true)
	rc := ctx.ResolveProgram(prog, global, resolver)
	if len(rc.Errors) > 0 {
		for _, ce := range rc.Errors {
			ce.Source = src
			ce.Pos.Path = path
		}
		fmt.Fprint(os.Stderr, cerr.FormatAll(rc.Errors, true))
		return fmt.Errorf("resolution failed with %d error(s)", len(rc.Errors))
	}

	fmt.Println("resolved OK")
	return nil
}

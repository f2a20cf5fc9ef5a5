package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bablakeluke/nitrassic-go/internal/lexer"
	"github.com/bablakeluke/nitrassic-go/internal/token"
)

var (
	evalExpr string
	showPos  bool
	showKind bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a script and print the resulting tokens",
	Long: `Tokenize a script and print the resulting tokens, one per line.

Examples:
  nitrassic lex script.js
  nitrassic lex -e "var x = 1 + 2;"
  nitrassic lex --show-pos --show-kind script.js`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "tokenize inline source instead of reading a file")
	lexCmd.Flags().BoolVar(&showPos, "show-pos", false, "show each token's line:column")
	lexCmd.Flags().BoolVar(&showKind, "show-kind", false, "show each token's type name")
}

func readSource(args []string) (src, path string, err error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("reading %s: %w", args[0], err)
		}
		return string(data), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e/--eval for inline source")
}

// nextExpressionContext is the lex subcommand's own approximation of the
// hint the parser would normally feed the lexer: a token that could end an
// expression (a literal, identifier, closing bracket, or `this`) means the
// next significant token is an operator or statement terminator; anything
// else means an operand (or a leading `/` that opens a regex) is expected.
func nextExpressionContext(t token.Token) lexer.ExpressionContext {
	switch t.Type {
	case token.IDENT, token.NUMBER, token.STRING, token.THIS,
		token.TRUE, token.FALSE, token.NULL,
		token.RPAREN, token.RBRACKET, token.RBRACE:
		return lexer.ExprOperator
	default:
		return lexer.ExprOperand
	}
}

func lexScript(_ *cobra.Command, args []string) error {
	src, path, err := readSource(args)
	if err != nil {
		return err
	}

	l := lexer.New(src, path)
	ctx := lexer.ExprOperand
	count := 0
	for {
		tok, err := l.Next(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return fmt.Errorf("lexing failed")
		}
		printToken(tok)
		count++
		if tok.Type == token.EOF {
			break
		}
		ctx = nextExpressionContext(tok)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "%d tokens\n", count)
	}
	return nil
}

func printToken(tok token.Token) {
	out := ""
	if showKind {
		out = fmt.Sprintf("[%-12s] ", tok.Type)
	}
	switch {
	case tok.Type == token.EOF:
		out += "EOF"
	case tok.Literal != "":
		out += fmt.Sprintf("%q", tok.Literal)
	default:
		out += tok.Type.String()
	}
	if showPos {
		out += fmt.Sprintf(" @%s", tok.Pos)
	}
	fmt.Println(out)
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/bablakeluke/nitrassic-go/pkg/engine"
)

var (
	replRed   = color.New(color.FgRed).SprintFunc()
	replGreen = color.New(color.FgGreen).SprintFunc()
	replDim   = color.New(color.Faint).SprintFunc()
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Long: `Start an interactive session: every line is compiled and run as its
own top-level unit against one shared Engine, so declarations from earlier
lines stay visible to later ones.`,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(_ *cobra.Command, _ []string) error {
	e, err := engine.New()
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer e.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), ".nitrassic_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	fmt.Println(replDim("Type a script line and press Enter; Ctrl-D to exit."))

	for {
		input, err := line.Prompt("nitrassic> ")
		if err == io.EOF || err == liner.ErrPromptAborted {
			fmt.Println(replGreen("\ngoodbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", replRed("error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		result, err := e.Eval(input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", replRed("error"), err)
			continue
		}
		if !result.Success {
			for _, rerr := range result.Errors {
				fmt.Fprintf(os.Stderr, "%s: %v\n", replRed("error"), rerr)
			}
			continue
		}
		if !result.Value.IsUndefined() {
			fmt.Println(result.Value.String())
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
	return nil
}

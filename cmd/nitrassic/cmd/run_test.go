package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunScriptEvalsInlineExpression(t *testing.T) {
	oldExpr, oldStrict := runEvalExpr, strict
	defer func() { runEvalExpr, strict = oldExpr, oldStrict }()
	runEvalExpr = `return 2 + 3;`

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := runScript(runCmd, nil)

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if err != nil {
		t.Fatalf("runScript failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "5") {
		t.Errorf("expected %q in output, got %q", "5", output)
	}
}

func TestRunScriptRunsFile(t *testing.T) {
	oldExpr, oldStrict := runEvalExpr, strict
	defer func() { runEvalExpr, strict = oldExpr, oldStrict }()
	runEvalExpr = ""

	tempDir := t.TempDir()
	scriptPath := filepath.Join(tempDir, "main.js")
	if err := os.WriteFile(scriptPath, []byte(`return 10 * 4;`), 0o644); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := runScript(runCmd, []string{scriptPath})

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	output := buf.String()

	if err != nil {
		t.Fatalf("runScript failed: %v\nOutput: %s", err, output)
	}
	if !strings.Contains(output, "40") {
		t.Errorf("expected %q in output, got %q", "40", output)
	}
}

func TestRunScriptRequiresFileOrEvalFlag(t *testing.T) {
	oldExpr := runEvalExpr
	defer func() { runEvalExpr = oldExpr }()
	runEvalExpr = ""

	if err := runScript(runCmd, nil); err == nil {
		t.Fatalf("expected an error when neither a file path nor -e/--eval is given")
	}
}

func TestRunScriptReportsCompileErrorsOnStderr(t *testing.T) {
	oldExpr := runEvalExpr
	defer func() { runEvalExpr = oldExpr }()
	runEvalExpr = `return +;`

	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	err := runScript(runCmd, nil)

	w.Close()
	os.Stderr = oldStderr

	var buf bytes.Buffer
	buf.ReadFrom(r)

	if err == nil {
		t.Fatalf("expected a syntax error to fail the command")
	}
	if buf.Len() == 0 {
		t.Fatalf("expected compile errors to be printed to stderr")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tutorhub/tutorhub-admin/internal/logging"
)

func main() {
	code := runMain(Execute, os.Stderr)
	if code != 0 {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	if err := execute(); err != nil {
		return exitCodeForError(err, stderr)
	}
	return 0
}

// exitCodeForError reports err and picks the process exit code. Interrupts win
// over any exit code a command attached.
func exitCodeForError(err error, stderr io.Writer) int {
	if errors.Is(err, context.Canceled) {
		emitCommandError(err, "command canceled", exitInterrupted, stderr)
		return exitInterrupted
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if !ee.silent {
			emitCommandError(ee.cause(err), "command failed", ee.code, stderr)
		}
		return ee.code
	}

	emitCommandError(err, "command failed", exitFailure, stderr)
	return exitFailure
}

func emitCommandError(err error, message string, exitCode int, stderr io.Writer) {
	ctx := currentCommandExecutionContext()
	if !ctx.UsesStructuredLog {
		if exitCode == exitInterrupted {
			fmt.Fprintln(stderr, "canceled")
			return
		}
		fmt.Fprintln(stderr, err)
		return
	}

	logger := loggerForFatalPath(ctx, stderr)
	logger.Error(message, "exit_code", exitCode, "error", err)
}

func loggerForFatalPath(ctx commandExecutionContext, stderr io.Writer) *slog.Logger {
	cfg, err := logging.LoadConfigFromEnv()
	if err != nil {
		cfg = logging.DefaultConfig()
	}
	return logging.NewLogger(cfg, stderr, ctx.CommandPath)
}

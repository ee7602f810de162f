package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestEmitCommandError_StructuredForScopedCommands(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "tutorhub-admin serve",
		UsesStructuredLog: true,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	emitCommandError(errors.New("boom"), "command failed", 1, &out)

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected structured log output")
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got := payload["app"]; got != "tutorhub-admin" {
		t.Fatalf("app = %v, want %q", got, "tutorhub-admin")
	}
	if got := payload["command"]; got != "tutorhub-admin serve" {
		t.Fatalf("command = %v, want %q", got, "tutorhub-admin serve")
	}
	if got := payload["exit_code"]; got != float64(1) {
		t.Fatalf("exit_code = %v, want %v", got, 1)
	}
	if got := payload["error"]; got != "boom" {
		t.Fatalf("error = %v, want %q", got, "boom")
	}
}

func TestEmitCommandError_FallsBackToJSONWhenLoggingEnvInvalid(t *testing.T) {
	t.Setenv("LOG_FORMAT", "invalid")
	t.Setenv("LOG_LEVEL", "info")
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "tutorhub-admin migrate",
		UsesStructuredLog: true,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	emitCommandError(errors.New("boom"), "command failed", 1, &out)

	line := strings.TrimSpace(out.String())
	if line == "" {
		t.Fatal("expected structured log output")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(line), &payload); err != nil {
		t.Fatalf("expected JSON fallback log, got parse error: %v", err)
	}
}

func TestEmitCommandError_PlainOutputForNonScopedCommands(t *testing.T) {
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "tutorhub-admin moderate approve",
		UsesStructuredLog: false,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	emitCommandError(errors.New("plain boom"), "command failed", 1, &out)
	if got := out.String(); got != "plain boom\n" {
		t.Fatalf("output = %q, want %q", got, "plain boom\n")
	}
}

func TestEmitCommandError_CanceledOutputForNonScopedCommands(t *testing.T) {
	setCommandExecutionContext(commandExecutionContext{
		CommandPath:       "tutorhub-admin moderate approve",
		UsesStructuredLog: false,
	})
	t.Cleanup(resetCommandExecutionContext)

	var out bytes.Buffer
	emitCommandError(context.Canceled, "command canceled", 130, &out)
	if got := out.String(); got != "canceled\n" {
		t.Fatalf("output = %q, want %q", got, "canceled\n")
	}
}

func TestExitCodeForError(t *testing.T) {
	setCommandExecutionContext(commandExecutionContext{CommandPath: "tutorhub-admin moderate approve"})
	t.Cleanup(resetCommandExecutionContext)

	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantOutput string
	}{
		{name: "generic", err: errors.New("boom"), wantCode: 1, wantOutput: "boom\n"},
		{name: "canceled", err: fmt.Errorf("load: %w", context.Canceled), wantCode: 130, wantOutput: "canceled\n"},
		{name: "exit error", err: &exitError{code: 3, err: errors.New("rejected")}, wantCode: 3, wantOutput: "rejected\n"},
		{name: "silent exit error", err: &exitError{code: 1, err: errors.New("already reported"), silent: true}, wantCode: 1, wantOutput: ""},
		{name: "interrupted exit error", err: &exitError{code: 2, err: context.Canceled}, wantCode: 130, wantOutput: "canceled\n"},
		{name: "bare exit error", err: &exitError{code: 4}, wantCode: 4, wantOutput: "exit 4\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			if got := exitCodeForError(tt.err, &out); got != tt.wantCode {
				t.Fatalf("exitCodeForError() = %d, want %d", got, tt.wantCode)
			}
			if got := out.String(); got != tt.wantOutput {
				t.Fatalf("output = %q, want %q", got, tt.wantOutput)
			}
		})
	}
}

func TestRunMainReturnsZeroOnSuccess(t *testing.T) {
	var out bytes.Buffer
	if got := runMain(func() error { return nil }, &out); got != 0 {
		t.Fatalf("runMain() = %d, want 0", got)
	}
}

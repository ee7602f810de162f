package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tutorhub/tutorhub-admin/internal/logging"
)

// structuredLogAnnotation marks commands whose output is structured logs
// rather than text meant for a terminal.
const structuredLogAnnotation = "structured-log"

var rootCmd = &cobra.Command{
	Use:           "tutorhub-admin",
	Short:         "Moderation console and CLI for the TutorHub marketplace.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		execCtx := commandExecutionContext{
			CommandPath:       cmd.CommandPath(),
			UsesStructuredLog: commandUsesStructuredLogging(cmd),
		}
		setCommandExecutionContext(execCtx)
		if !execCtx.UsesStructuredLog {
			return nil
		}
		_, err := logging.BootstrapFromEnv(logging.BootstrapOptions{
			Command: execCtx.CommandPath,
			Writer:  os.Stderr,
		})
		return err
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, loginCmd, moderateCmd)
}

// commandExecutionContext describes the command being run, for error reporting
// after cobra returns.
type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	execCtxMu sync.RWMutex
	execCtx   commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	execCtxMu.Lock()
	defer execCtxMu.Unlock()
	execCtx = ctx
}

func currentCommandExecutionContext() commandExecutionContext {
	execCtxMu.RLock()
	defer execCtxMu.RUnlock()
	return execCtx
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[structuredLogAnnotation] == "true" {
			return true
		}
	}
	return false
}

func structuredLogging() map[string]string {
	return map[string]string{structuredLogAnnotation: "true"}
}

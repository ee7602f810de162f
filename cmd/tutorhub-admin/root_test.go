package main

import "testing"

func TestRootCommand_RegistersModerateCommands(t *testing.T) {
	t.Parallel()

	for _, args := range [][]string{
		{"moderate", "stats"},
		{"moderate", "pending"},
		{"moderate", "reports"},
		{"moderate", "approve"},
		{"moderate", "block"},
		{"moderate", "delete-review"},
	} {
		cmd, _, err := rootCmd.Find(args)
		if err != nil || cmd == nil || cmd.Name() != args[len(args)-1] {
			t.Fatalf("%v command not registered: cmd=%v err=%v", args, cmd, err)
		}
	}
}

func TestCommandUsesStructuredLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{name: "serve", args: []string{"serve"}, want: true},
		{name: "migrate", args: []string{"migrate"}, want: true},
		{name: "login", args: []string{"login"}, want: false},
		{name: "moderate pending", args: []string{"moderate", "pending"}, want: false},
		{name: "moderate approve", args: []string{"moderate", "approve"}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd, _, err := rootCmd.Find(tc.args)
			if err != nil {
				t.Fatalf("Find(%v) error = %v", tc.args, err)
			}
			if cmd == nil {
				t.Fatalf("Find(%v) returned nil command", tc.args)
			}

			if got := commandUsesStructuredLogging(cmd); got != tc.want {
				t.Fatalf("commandUsesStructuredLogging(%q) = %v, want %v", cmd.CommandPath(), got, tc.want)
			}
		})
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tutorhub/tutorhub-admin/internal/auth"
	"github.com/tutorhub/tutorhub-admin/internal/config"
	"github.com/tutorhub/tutorhub-admin/internal/marketplace"
)

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange marketplace admin credentials for tokens usable by `moderate`.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := auth.NormalizeEmail(loginEmail)
		if email == "" {
			return errors.New("--email is required")
		}

		password, err := resolveLoginPassword(cmd)
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runLogin(cmd.Context(), cfg, email, password, cmd.OutOrStdout())
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "marketplace admin email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")
}

// runLogin prints the token pair as .env lines.
func runLogin(ctx context.Context, cfg config.Config, email, password string, out io.Writer) error {
	client, err := marketplace.New(cfg.MarketplaceURL, nil, cfg.MarketplaceTimeout)
	if err != nil {
		return err
	}
	pair, err := client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, marketplace.ErrUnauthorized) {
			return &exitError{code: exitUsage, err: errors.New("login rejected: invalid email or password")}
		}
		return err
	}

	fmt.Fprintf(out, "MARKETPLACE_TOKEN=%s\n", pair.Access)
	if pair.Refresh != "" {
		fmt.Fprintf(out, "MARKETPLACE_REFRESH_TOKEN=%s\n", pair.Refresh)
	}
	return nil
}

func resolveLoginPassword(cmd *cobra.Command) (string, error) {
	if loginPasswordStdin {
		raw, err := readStdinLine(cmd.InOrStdin())
		if err != nil {
			return "", err
		}
		password := strings.TrimRight(raw, "\r\n")
		if password == "" {
			return "", errors.New("password is empty")
		}
		return password, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no password provided (use --password-stdin or run in a terminal)")
	}

	cmd.PrintErr("Password: ")
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.PrintErrln()
	if err != nil {
		return "", err
	}
	if len(pass) == 0 {
		return "", errors.New("password is empty")
	}
	return string(pass), nil
}

func readStdinLine(in io.Reader) (string, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return scanner.Text(), nil
}

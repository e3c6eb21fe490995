package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// Interactive reports whether stdin is a terminal.
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// Confirm asks a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	if !Interactive() {
		return ConfirmFrom(os.Stdin, os.Stdout, prompt)
	}
	ok := false
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return err == nil && ok
}

// ConfirmFrom reads a y/N answer from r.
func ConfirmFrom(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", StyleWarning.Render(prompt))
	line, _ := bufio.NewReader(r).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// WalletInput is what the add-wallet prompt collects.
type WalletInput struct {
	Name    string
	Kind    string // "signing" | "watch-only"
	Secret  string // private key for signing wallets, address otherwise
	Default bool
}

// PromptWallet runs the interactive add-wallet form. check validates the
// secret for the chosen kind.
func PromptWallet(check func(kind, secret string) error) (*WalletInput, error) {
	in := &WalletInput{Kind: "signing"}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Wallet name").
				Value(&in.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Type").
				Options(
					huh.NewOption("Signing (private key)", "signing"),
					huh.NewOption("Watch-only (address)", "watch-only"),
				).
				Value(&in.Kind),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Private key").
				EchoMode(huh.EchoModePassword).
				Value(&in.Secret).
				Validate(func(s string) error { return check(in.Kind, s) }),
		).WithHideFunc(func() bool { return in.Kind != "signing" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Address").
				Placeholder("0x...").
				Value(&in.Secret).
				Validate(func(s string) error { return check(in.Kind, s) }),
		).WithHideFunc(func() bool { return in.Kind == "signing" }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Make this the default wallet?").
				Value(&in.Default),
		),
	).Run()
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	return in, nil
}

package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrNoTerminal is returned when a prompt needs a terminal and stdin is not one
var ErrNoTerminal = errors.New("stdin is not a terminal")

var promptStyle = lipgloss.NewStyle().
	Foreground(WarningColor).
	Bold(true)

// PromptPassword asks for a password on the terminal without echo.
// The prompt goes to stderr so stdout stays clean for piped output.
func PromptPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNoTerminal
	}

	fmt.Fprint(os.Stderr, promptStyle.Render(label+": "))
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(pw), nil
}

// Confirm renders a warning box and asks a yes/no question on in.
// Anything but "y" or "yes" declines.
func Confirm(out io.Writer, in io.Reader, title string, details []Detail, question string) bool {
	_, _ = fmt.Fprintln(out, NewWarningResult(title, details...).Render())
	_, _ = fmt.Fprint(out, promptStyle.Render(question+" [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		_, _ = fmt.Fprintln(out, MutedStyle.Render("  Operation cancelled."))
		return false
	}
}

package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a confirmation is needed but stdin is
// not a terminal.
var ErrNotInteractive = errors.New("confirmation required but stdin is not a terminal (use --force)")

// ConfirmFunc asks a yes/no question.
type ConfirmFunc func(question string) (bool, error)

// TerminalConfirm asks on the controlling terminal with promptui. When stdin
// is not a terminal it refuses instead of blocking.
func TerminalConfirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, ErrNotInteractive
	}

	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("%s %s", IconWarning, question),
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, fmt.Errorf("cancelled")
		}
		return false, err
	}
	return true, nil
}

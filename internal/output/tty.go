package output

import (
	"os"

	"golang.org/x/term"
)

// IsTTY reports whether stdout and stderr are both terminals.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

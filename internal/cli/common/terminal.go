package common

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// IsInteractiveTerminal reports whether both stdin and stdout of command are
// attached to a terminal.
func IsInteractiveTerminal(command *cobra.Command) bool {
	return isTerminalReader(command.InOrStdin()) && isTerminalWriter(command.OutOrStdout())
}

func isTerminalReader(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func isTerminalWriter(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// SupportsColor reports whether writer is a terminal that accepts ANSI
// sequences.
func SupportsColor(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if value := os.Getenv("TERM"); value == "" || value == "dumb" {
		return false
	}
	return isTerminalWriter(writer)
}

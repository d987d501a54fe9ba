package common

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// ReadInput reads path, or the command's stdin when path is empty or "-".
func ReadInput(command *cobra.Command, path string) ([]byte, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		data, err := io.ReadAll(command.InOrStdin())
		if err != nil {
			return nil, ValidationError("failed to read stdin", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ValidationError("failed to read input file "+path, err)
	}
	return data, nil
}

// WriteBytes writes data to path, or to the command's stdout when path is
// empty or "-".
func WriteBytes(command *cobra.Command, path string, data []byte) error {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		_, err := command.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ValidationError("failed to write output file "+path, err)
	}
	return nil
}

package commandmeta

import (
	"strings"
)

type OutputPolicy uint8

const (
	OutputPolicyStructured OutputPolicy = iota
	OutputPolicyTextOnly
)

// RequiresContextBootstrapPath reports whether the command talks to the API
// and therefore needs a resolved context before it runs.
func RequiresContextBootstrapPath(commandPath string) bool {
	normalized := strings.TrimSpace(commandPath)
	for _, group := range []string{"account", "file", "folder", "link"} {
		if normalized == "cloudstore "+group || strings.HasPrefix(normalized, "cloudstore "+group+" ") {
			return true
		}
	}
	return false
}

func EmitsExecutionStatusPath(path string) bool {
	switch strings.TrimSpace(path) {
	case "cloudstore account delete",
		"cloudstore file upload",
		"cloudstore file update-contents",
		"cloudstore file copy",
		"cloudstore file rename",
		"cloudstore file delete",
		"cloudstore folder create",
		"cloudstore folder delete",
		"cloudstore link create",
		"cloudstore link update",
		"cloudstore link delete",
		"cloudstore config init",
		"cloudstore config use",
		"cloudstore config delete":
		return true
	default:
		return false
	}
}

func OutputPolicyForPath(path string) OutputPolicy {
	switch strings.TrimSpace(path) {
	case "cloudstore file download",
		"cloudstore completion bash",
		"cloudstore completion zsh",
		"cloudstore completion fish",
		"cloudstore completion powershell":
		return OutputPolicyTextOnly
	default:
		return OutputPolicyStructured
	}
}

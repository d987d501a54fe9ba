package main

import (
	"errors"
	"testing"

	"github.com/crmarques/cloudstore/faults"
)

func TestContextNameFromArgs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "long_flag_separated", args: []string{"--context", "dev"}, want: "dev"},
		{name: "short_flag_separated", args: []string{"link", "list", "-c", "prod"}, want: "prod"},
		{name: "long_flag_equals", args: []string{"--context=stage"}, want: "stage"},
		{name: "missing_value_returns_empty", args: []string{"link", "list", "--context"}, want: ""},
		{name: "flag_absent", args: []string{"link", "list"}, want: ""},
		{name: "stops_at_terminator", args: []string{"file", "upload", "--", "--context", "dev"}, want: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := contextNameFromArgs(testCase.args); got != testCase.want {
				t.Fatalf("contextNameFromArgs() = %q, want %q", got, testCase.want)
			}
		})
	}
}

func TestTelemetryOptionsFromArgs(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		traceEndpointEnvVar: "collector:4317",
		traceInsecureEnvVar: "TRUE",
	}
	lookup := func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
	noEnv := func(string) (string, bool) { return "", false }

	fromEnv := telemetryOptionsFromArgs([]string{"version"}, lookup)
	if fromEnv.Endpoint != "collector:4317" || !fromEnv.Insecure {
		t.Fatalf("unexpected env options %#v", fromEnv)
	}
	if fromEnv.ServiceName != "cloudstore" {
		t.Fatalf("unexpected service name %q", fromEnv.ServiceName)
	}

	fromFlag := telemetryOptionsFromArgs([]string{"--trace-endpoint=localhost:4317", "version"}, lookup)
	if fromFlag.Endpoint != "localhost:4317" {
		t.Fatalf("expected flag to win, got %q", fromFlag.Endpoint)
	}

	disabled := telemetryOptionsFromArgs([]string{"version"}, noEnv)
	if disabled.Endpoint != "" || disabled.Insecure {
		t.Fatalf("expected disabled options, got %#v", disabled)
	}
}

func TestIsHelpInvocation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
		want bool
	}{
		{name: "no_args_defaults_to_help", args: nil, want: true},
		{name: "short_help_flag", args: []string{"-h"}, want: true},
		{name: "help_command", args: []string{"help", "file"}, want: true},
		{name: "help_after_terminator_ignored", args: []string{"file", "upload", "--", "-h"}, want: false},
		{name: "regular_command", args: []string{"link", "list"}, want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			if got := isHelpInvocation(testCase.args); got != testCase.want {
				t.Fatalf("isHelpInvocation() = %t, want %t", got, testCase.want)
			}
		})
	}
}

func TestShouldSkipContextBootstrap(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want bool
	}{
		{name: "help", args: []string{"--help"}, want: true},
		{name: "completion_script", args: []string{"completion", "bash"}, want: true},
		{name: "shell_completion", args: []string{"__complete", "link", ""}, want: true},
		{name: "version", args: []string{"version"}, want: true},
		{name: "config_list", args: []string{"config", "list"}, want: true},
		{name: "partial_command", args: []string{"link"}, want: true},
		{name: "unknown_command", args: []string{"unknown-command"}, want: true},
		{name: "missing_positional", args: []string{"file", "get", "-a", "a1"}, want: true},
		{name: "link_list", args: []string{"link", "list", "-a", "a1"}, want: false},
		{name: "file_get_with_global_flag", args: []string{"-o", "json", "file", "get", "-a", "a1", "f1"}, want: false},
		{name: "account_list", args: []string{"account", "list"}, want: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := shouldSkipContextBootstrap(testCase.args); got != testCase.want {
				t.Fatalf("shouldSkipContextBootstrap(%v) = %t, want %t", testCase.args, got, testCase.want)
			}
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "plain_error", err: errors.New("boom"), want: 1},
		{name: "validation", err: faults.NewTypedError(faults.ValidationError, "invalid", nil), want: 2},
		{name: "not_found", err: faults.NewTypedError(faults.NotFoundError, "missing", nil), want: 3},
		{name: "unauthorized", err: faults.NewStatusError(401, nil), want: 4},
		{name: "transport", err: faults.NewTypedError(faults.TransportError, "net", nil), want: 6},
		{name: "internal", err: faults.NewTypedError(faults.InternalError, "internal", nil), want: 1},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			if got := exitCodeForError(testCase.err); got != testCase.want {
				t.Fatalf("exitCodeForError(%v) = %d, want %d", testCase.err, got, testCase.want)
			}
		})
	}
}

package common

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

type GlobalFlags struct {
	Context       string
	Debug         bool
	NoStatus      bool
	NoColor       bool
	Output        string
	JQ            string
	TraceEndpoint string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVarP(&flags.Context, "context", "c", "", "context name")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	command.PersistentFlags().StringVar(&flags.JQ, "jq", "", "jq expression applied to the output")
	command.PersistentFlags().StringVar(&flags.TraceEndpoint, "trace-endpoint", "", "OTLP gRPC endpoint for traces and metrics")
	RegisterOutputFlagCompletion(command)
}

func RegisterOutputFlagCompletion(command *cobra.Command) {
	_ = command.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{OutputAuto, OutputText, OutputJSON, OutputYAML}, cobra.ShellCompDirectiveNoFileComp
	})
}

// BindParamFlag registers a repeatable --param key=value flag.
func BindParamFlag(command *cobra.Command, params *[]string) {
	command.Flags().StringArrayVar(params, "param", nil, "query parameter as key=value (repeatable)")
}

// ParseAssignments turns key=value pairs into query values. Repeated keys
// accumulate.
func ParseAssignments(flagName string, assignments []string) (url.Values, error) {
	values := url.Values{}
	for _, assignment := range assignments {
		key, value, found := strings.Cut(assignment, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, ValidationError("flag --"+flagName+" expects key=value, got "+assignment, nil)
		}
		values.Add(key, value)
	}
	return values, nil
}

// BindAccountFlag registers the persistent --account flag shared by the
// account-scoped command groups.
func BindAccountFlag(command *cobra.Command, accountID *string) {
	command.PersistentFlags().StringVarP(accountID, "account", "a", "", "account id")
}

// ParseFieldAssignments turns key=value pairs into resource fields. Values
// that parse as JSON keep their JSON type; anything else is a string.
func ParseFieldAssignments(flagName string, assignments []string) (map[string]any, error) {
	fields := make(map[string]any, len(assignments))
	for _, assignment := range assignments {
		key, raw, found := strings.Cut(assignment, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, ValidationError("flag --"+flagName+" expects key=value, got "+assignment, nil)
		}

		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		fields[key] = value
	}
	return fields, nil
}

package config

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	configdomain "github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/internal/cli/common"
	"github.com/crmarques/cloudstore/yamlutil"
)

const maskedValue = "********"

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return newCommandWithPrompter(deps, globalFlags, common.TerminalPrompter{})
}

func newCommandWithPrompter(
	deps common.CommandDependencies,
	globalFlags *common.GlobalFlags,
	prompter common.Prompter,
) *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Manage contexts",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newInitCommand(deps, prompter),
		newListCommand(deps, globalFlags),
		newUseCommand(deps),
		newCurrentCommand(deps, globalFlags),
		newDeleteCommand(deps, globalFlags, prompter),
		newResolveCommand(deps, globalFlags),
	)
	return command
}

func newInitCommand(deps common.CommandDependencies, prompter common.Prompter) *cobra.Command {
	var cfg configdomain.Context
	var setCurrent bool

	command := &cobra.Command{
		Use:   "init [name]",
		Short: "Create or replace a context (prompts for missing values)",
		Example: strings.Join([]string{
			"  cloudstore config init",
			"  cloudstore config init dev --api-key \"$KEY\" --set-current",
			"  cloudstore config init prod --base-url https://api.example.com --bearer-token \"$TOKEN\"",
		}, "\n"),
		Args: cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}

			if len(args) > 0 {
				cfg.Name = args[0]
			}
			if strings.TrimSpace(cfg.Name) == "" {
				cfg.Name, err = prompter.Input(command, "Context name:", "", true)
				if err != nil {
					return err
				}
			}
			if cfg.APIKey != "" && cfg.BearerToken != "" {
				return common.ValidationError("flags --api-key and --bearer-token are mutually exclusive", nil)
			}
			if cfg.APIKey == "" && cfg.BearerToken == "" {
				cfg.APIKey, err = prompter.Secret(command, "API key (leave empty to skip):")
				if err != nil {
					return err
				}
			}

			if err := configdomain.Validate(configdomain.Merge(configdomain.Default(), cfg.Config)); err != nil {
				return err
			}
			if err := contexts.Upsert(command.Context(), cfg); err != nil {
				return err
			}
			if setCurrent {
				return contexts.SetCurrent(command.Context(), cfg.Name)
			}
			return nil
		},
	}

	command.Flags().StringVar(&cfg.BaseURL, "base-url", "", "API base url")
	command.Flags().StringVar(&cfg.APIVersion, "api-version", "", "API version")
	command.Flags().StringVar(&cfg.APIKey, "api-key", "", "API key credential")
	command.Flags().StringVar(&cfg.BearerToken, "bearer-token", "", "bearer token credential")
	command.Flags().BoolVar(&setCurrent, "set-current", false, "make the context current")
	return command
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List contexts",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			items, err := contexts.List(command.Context())
			if err != nil {
				return err
			}

			names := make([]string, 0, len(items))
			for _, item := range items {
				names = append(names, item.Name)
			}
			return common.WriteOutput(command, globalFlags, names, func(w io.Writer, value []string) error {
				for _, name := range value {
					if _, writeErr := fmt.Fprintln(w, name); writeErr != nil {
						return writeErr
					}
				}
				return nil
			})
		},
	}
}

func newUseCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set the current context",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			return contexts.SetCurrent(command.Context(), args[0])
		},
	}
}

func newCurrentCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the current context name",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			current, err := contexts.GetCurrent(command.Context())
			if err != nil {
				return err
			}
			return common.WriteText(command, globalFlags, current.Name)
		},
	}
}

func newDeleteCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, prompter common.Prompter) *cobra.Command {
	var yes bool

	command := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}

			if !yes {
				confirmed, err := prompter.Confirm(command, fmt.Sprintf("Delete context %q?", args[0]), false)
				if err != nil {
					return err
				}
				if !confirmed {
					return common.WriteText(command, globalFlags, "delete canceled")
				}
			}
			return contexts.Delete(command.Context(), args[0])
		},
	}

	command.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return command
}

func newResolveCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var overrides []string
	var showSecrets bool

	command := &cobra.Command{
		Use:   "resolve",
		Short: "Print the effective configuration of a context",
		Example: strings.Join([]string{
			"  cloudstore config resolve",
			"  cloudstore config resolve --context prod",
			"  cloudstore config resolve --set timeout=5s --set api-version=2",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			contexts, err := common.RequireContexts(deps)
			if err != nil {
				return err
			}
			overrideConfig, err := parseOverrides(overrides)
			if err != nil {
				return err
			}

			resolved, err := contexts.ResolveContext(command.Context(), configdomain.ContextSelection{
				Name:      common.ContextName(command.Context()),
				Overrides: overrideConfig,
			})
			if err != nil {
				return err
			}
			if !showSecrets {
				resolved = maskSecrets(resolved)
			}

			return common.WriteOutput(command, globalFlags, resolved, func(w io.Writer, value configdomain.Config) error {
				encoded, err := yamlutil.Marshal(value)
				if err != nil {
					return err
				}
				_, err = w.Write(encoded)
				return err
			})
		},
	}

	command.Flags().StringArrayVarP(&overrides, "set", "e", nil, "override key=value using config keys (repeatable)")
	command.Flags().BoolVar(&showSecrets, "show-secrets", false, "print credentials unmasked")
	return command
}

// parseOverrides decodes key=value pairs through the yaml config keys so
// unknown keys are rejected.
func parseOverrides(assignments []string) (configdomain.Config, error) {
	if len(assignments) == 0 {
		return configdomain.Config{}, nil
	}

	fields, err := common.ParseFieldAssignments("set", assignments)
	if err != nil {
		return configdomain.Config{}, err
	}
	encoded, err := yaml.Marshal(fields)
	if err != nil {
		return configdomain.Config{}, common.ValidationError("failed to encode overrides", err)
	}

	var overrides configdomain.Config
	decoder := yaml.NewDecoder(bytes.NewReader(encoded))
	decoder.KnownFields(true)
	if err := decoder.Decode(&overrides); err != nil {
		return configdomain.Config{}, common.ValidationError("invalid --set override", err)
	}
	return overrides, nil
}

func maskSecrets(cfg configdomain.Config) configdomain.Config {
	masked := cfg.Clone()
	if masked.APIKey != "" {
		masked.APIKey = maskedValue
	}
	if masked.BearerToken != "" {
		masked.BearerToken = maskedValue
	}
	return masked
}

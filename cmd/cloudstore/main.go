package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/crmarques/cloudstore/config"
	"github.com/crmarques/cloudstore/core"
	"github.com/crmarques/cloudstore/internal/cli"
	"github.com/crmarques/cloudstore/internal/cli/version"
	"github.com/crmarques/cloudstore/internal/telemetry"
)

const (
	traceEndpointEnvVar  = "CLOUDSTORE_TRACE_ENDPOINT"
	traceInsecureEnvVar  = "CLOUDSTORE_TRACE_INSECURE"
	telemetryFlushBudget = 5 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx := context.Background()

	tel, err := telemetry.Setup(ctx, telemetryOptionsFromArgs(args, os.LookupEnv))
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return exitCodeForError(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryFlushBudget)
		defer cancel()
		if shutdownErr := tel.Shutdown(shutdownCtx); shutdownErr != nil {
			_, _ = fmt.Fprintln(os.Stderr, "telemetry shutdown:", shutdownErr)
		}
	}()

	bootstrap := core.BootstrapConfig{}
	deps := cli.Dependencies{
		Contexts: core.NewContextService(bootstrap),
	}
	if !shouldSkipContextBootstrap(args) {
		var clientOpts []core.ClientOption
		if tel.Enabled() {
			clientOpts = append(clientOpts,
				core.WithTracerProvider(tel.TracerProvider),
				core.WithMeterProvider(tel.MeterProvider),
			)
		}

		client, err := core.NewClient(
			bootstrap,
			config.ContextSelection{Name: contextNameFromArgs(args)},
			clientOpts...,
		)
		if err != nil {
			if !isShellCompletionInvocation(args) {
				_, _ = fmt.Fprintln(os.Stderr, err)
				return exitCodeForError(err)
			}
		} else {
			deps = cli.Dependencies{
				Contexts: client.Contexts,
				Accounts: client.Accounts,
			}
		}
	}

	if err := cli.Execute(deps); err != nil {
		return exitCodeForError(err)
	}
	return 0
}

func exitCodeForError(err error) int {
	return cli.ExitCodeForError(err)
}

func telemetryOptionsFromArgs(args []string, lookup func(string) (string, bool)) telemetry.Options {
	endpoint := flagValueFromArgs(args, "--trace-endpoint", "")
	if endpoint == "" {
		endpoint, _ = lookup(traceEndpointEnvVar)
	}
	insecure, _ := lookup(traceInsecureEnvVar)

	return telemetry.Options{
		Endpoint:       strings.TrimSpace(endpoint),
		Insecure:       strings.EqualFold(strings.TrimSpace(insecure), "true"),
		ServiceName:    "cloudstore",
		ServiceVersion: version.Version,
	}
}

func contextNameFromArgs(args []string) string {
	return flagValueFromArgs(args, "--context", "-c")
}

func flagValueFromArgs(args []string, long string, short string) string {
	for idx := 0; idx < len(args); idx++ {
		current := args[idx]
		if current == "--" {
			break
		}

		if current == long || (short != "" && current == short) {
			if idx+1 < len(args) {
				return args[idx+1]
			}
			return ""
		}
		if strings.HasPrefix(current, long+"=") {
			return strings.TrimPrefix(current, long+"=")
		}
	}

	return ""
}

func isHelpInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if args[0] == "help" {
		return true
	}

	for _, current := range args {
		if current == "--" {
			break
		}
		if current == "--help" || current == "-h" {
			return true
		}
	}

	return false
}

func isCompletionScriptInvocation(args []string) bool {
	return len(args) > 0 && args[0] == "completion"
}

func isShellCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return false
	}
	return args[0] == "__complete" || args[0] == "__completeNoDesc"
}

func shouldSkipContextBootstrap(args []string) bool {
	if isHelpInvocation(args) || isCompletionScriptInvocation(args) {
		return true
	}
	if isShellCompletionInvocation(args) {
		return true
	}

	commandPath, ok := resolveRunnableCommandPath(args)
	if !ok {
		return true
	}
	return !cli.RequiresContextBootstrapPath(commandPath)
}

func resolveRunnableCommandPath(args []string) (string, bool) {
	probe := cli.NewRootCommand(cli.Dependencies{})
	command, remainingArgs, err := probe.Find(args)
	if err != nil || command == nil || !command.Runnable() {
		return "", false
	}

	if err := command.ParseFlags(remainingArgs); err != nil {
		return "", false
	}
	if err := command.ValidateArgs(command.Flags().Args()); err != nil {
		return "", false
	}

	return strings.TrimSpace(command.CommandPath()), true
}

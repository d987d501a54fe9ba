package account

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/cloudstore/debugctx"
	"github.com/crmarques/cloudstore/internal/cli/common"
	"github.com/crmarques/cloudstore/resource"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "account",
		Short: "Manage connected accounts",
		Args:  cobra.NoArgs,
	}

	command.AddCommand(
		newListCommand(deps, globalFlags),
		newGetCommand(deps, globalFlags),
		newDeleteCommand(deps),
	)
	return command
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var params []string

	command := &cobra.Command{
		Use:   "list",
		Short: "List connected accounts",
		Example: strings.Join([]string{
			"  cloudstore account list",
			"  cloudstore account list --param page_size=10 --jq '.objects[].id'",
		}, "\n"),
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			accounts, err := common.RequireAccounts(deps)
			if err != nil {
				return err
			}
			query, err := common.ParseAssignments("param", params)
			if err != nil {
				return err
			}

			debugctx.Printf(command.Context(), "account list params=%v", query)

			collection, err := accounts.All(command.Context(), resource.WithParams(query))
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, collection, func(w io.Writer, value *resource.Collection) error {
				return common.RenderCollectionText(w, value, globalFlags.NoColor)
			})
		},
	}

	common.BindParamFlag(command, &params)
	return command
}

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			accounts, err := common.RequireAccounts(deps)
			if err != nil {
				return err
			}

			item, err := accounts.Get(command.Context(), args[0])
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, item, func(w io.Writer, value *resource.Account) error {
				return common.RenderResourceText(w, value)
			})
		},
	}
}

func newDeleteCommand(deps common.CommandDependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <account-id>",
		Short: "Disconnect an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			item, err := common.RequireAccount(deps, args[0])
			if err != nil {
				return err
			}
			return item.Delete(command.Context(), nil)
		},
	}
}

package folder

import (
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/cloudstore/internal/cli/common"
	"github.com/crmarques/cloudstore/resource"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var accountID string

	command := &cobra.Command{
		Use:   "folder",
		Short: "Manage folders in an account",
		Args:  cobra.NoArgs,
	}
	common.BindAccountFlag(command, &accountID)

	command.AddCommand(
		newGetCommand(deps, globalFlags, &accountID),
		newContentsCommand(deps, globalFlags, &accountID),
		newCreateCommand(deps, globalFlags, &accountID),
		newDeleteCommand(deps, &accountID),
	)
	return command
}

func folderID(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get [folder-id]",
		Short: "Show folder metadata (defaults to the root folder)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			item, err := account.Folders().Get(command.Context(), folderID(args))
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, item, func(w io.Writer, value *resource.Folder) error {
				return common.RenderResourceText(w, value)
			})
		},
	}
}

func newContentsCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	var params []string

	command := &cobra.Command{
		Use:   "contents [folder-id]",
		Short: "List the children of a folder (defaults to the root folder)",
		Example: strings.Join([]string{
			"  cloudstore folder contents -a a1",
			"  cloudstore folder contents -a a1 f123 --jq '[.objects[] | select(.type == \"file\") | .name]'",
		}, "\n"),
		Args: cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			query, err := common.ParseAssignments("param", params)
			if err != nil {
				return err
			}
			item, err := account.Folders().New(folderID(args))
			if err != nil {
				return err
			}

			collection, err := item.Contents(command.Context(), query)
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

func newCreateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	var parentID string

	command := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			if strings.TrimSpace(args[0]) == "" {
				return common.ValidationError("folder name is required", nil)
			}

			fields := map[string]any{"name": args[0], "parent_id": parentID}
			item, err := account.Folders().Create(command.Context(), fields)
			if err != nil {
				return err
			}
			return common.WriteOutput(command, globalFlags, item, func(w io.Writer, value *resource.Folder) error {
				return common.RenderResourceText(w, value)
			})
		},
	}

	command.Flags().StringVar(&parentID, "parent", resource.FolderKind.DefaultID, "parent folder id")
	return command
}

func newDeleteCommand(deps common.CommandDependencies, accountID *string) *cobra.Command {
	var recursive bool
	var permanent bool

	command := &cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Delete a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			item, err := account.Folders().New(args[0])
			if err != nil {
				return err
			}

			query := url.Values{}
			if recursive {
				query.Set("recursive", "true")
			}
			if permanent {
				query.Set("permanent", "true")
			}
			return item.Delete(command.Context(), query)
		},
	}

	command.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete non-empty folders")
	command.Flags().BoolVar(&permanent, "permanent", false, "skip the provider trash")
	return command
}

package link

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/crmarques/cloudstore/internal/cli/common"
	"github.com/crmarques/cloudstore/resource"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var accountID string

	command := &cobra.Command{
		Use:   "link",
		Short: "Manage shared links in an account",
		Args:  cobra.NoArgs,
	}
	common.BindAccountFlag(command, &accountID)

	command.AddCommand(
		newListCommand(deps, globalFlags, &accountID),
		newGetCommand(deps, globalFlags, &accountID),
		newCreateCommand(deps, globalFlags, &accountID),
		newUpdateCommand(deps, globalFlags, &accountID),
		newDeleteCommand(deps, &accountID),
	)
	return command
}

func writeLink(command *cobra.Command, globalFlags *common.GlobalFlags, item *resource.Link) error {
	return common.WriteOutput(command, globalFlags, item, func(w io.Writer, value *resource.Link) error {
		return common.RenderResourceText(w, value)
	})
}

func newListCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	var params []string

	command := &cobra.Command{
		Use:   "list",
		Short: "List links",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			query, err := common.ParseAssignments("param", params)
			if err != nil {
				return err
			}

			collection, err := account.Links().All(command.Context(), resource.WithParams(query))
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

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <link-id>",
		Short: "Show a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			item, err := account.Links().Get(command.Context(), args[0])
			if err != nil {
				return err
			}
			return writeLink(command, globalFlags, item)
		},
	}
}

func newCreateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	var expiration string
	var password string
	var direct bool

	command := &cobra.Command{
		Use:   "create <file-id>",
		Short: "Create a link to a file",
		Example: strings.Join([]string{
			"  cloudstore link create -a a1 f1",
			"  cloudstore link create -a a1 f1 --expiration 72h --direct",
			"  cloudstore link create -a a1 f1 --expiration 2026-12-31T00:00:00Z",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}

			fields := map[string]any{"file_id": args[0], "direct": direct}
			if strings.TrimSpace(expiration) != "" {
				expiresAt, err := parseExpiration(expiration, time.Now())
				if err != nil {
					return err
				}
				fields["expiration"] = expiresAt
			}
			if password != "" {
				fields["password"] = password
			}

			item, err := account.Links().Create(command.Context(), fields)
			if err != nil {
				return err
			}
			return writeLink(command, globalFlags, item)
		},
	}

	command.Flags().StringVar(&expiration, "expiration", "", "expiry as an RFC 3339 time or a duration from now")
	command.Flags().StringVar(&password, "password", "", "password protecting the link")
	command.Flags().BoolVar(&direct, "direct", false, "link straight to the file contents")
	return command
}

// parseExpiration accepts an absolute RFC 3339 time or a duration relative
// to now.
func parseExpiration(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return time.Time{}, common.ValidationError("flag --expiration expects an RFC 3339 time or a positive duration", err)
	}
	return now.Add(duration).UTC().Truncate(time.Second), nil
}

func newUpdateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	var assignments []string

	command := &cobra.Command{
		Use:   "update <link-id>",
		Short: "Change link fields",
		Example: strings.Join([]string{
			"  cloudstore link update -a a1 l1 --set active=false",
			"  cloudstore link update -a a1 l1 --set expiration=null",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			fields, err := common.ParseFieldAssignments("set", assignments)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return common.ValidationError("flag --set is required", nil)
			}

			item, err := account.Links().New(args[0])
			if err != nil {
				return err
			}
			if err := item.Populate(map[string]any{}); err != nil {
				return err
			}
			for name, value := range fields {
				item.Set(name, value)
			}
			if err := item.Save(command.Context()); err != nil {
				return err
			}
			return writeLink(command, globalFlags, item)
		},
	}

	command.Flags().StringArrayVarP(&assignments, "set", "e", nil, "field assignment key=value (repeatable)")
	return command
}

func newDeleteCommand(deps common.CommandDependencies, accountID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <link-id>",
		Short: "Delete a link",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			item, err := account.Links().New(args[0])
			if err != nil {
				return err
			}
			return item.Delete(command.Context(), nil)
		},
	}
}

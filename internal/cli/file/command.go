package file

import (
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crmarques/cloudstore/debugctx"
	"github.com/crmarques/cloudstore/internal/cli/common"
	"github.com/crmarques/cloudstore/resource"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var accountID string

	command := &cobra.Command{
		Use:   "file",
		Short: "Manage files in an account",
		Args:  cobra.NoArgs,
	}
	common.BindAccountFlag(command, &accountID)

	command.AddCommand(
		newGetCommand(deps, globalFlags, &accountID),
		newDownloadCommand(deps, &accountID),
		newUploadCommand(deps, globalFlags, &accountID),
		newUpdateContentsCommand(deps, globalFlags, &accountID),
		newCopyCommand(deps, globalFlags, &accountID),
		newRenameCommand(deps, globalFlags, &accountID),
		newDeleteCommand(deps, &accountID),
	)
	return command
}

func writeFile(command *cobra.Command, globalFlags *common.GlobalFlags, item *resource.File) error {
	return common.WriteOutput(command, globalFlags, item, func(w io.Writer, value *resource.File) error {
		return common.RenderResourceText(w, value)
	})
}

func newGetCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <file-id>",
		Short: "Show file metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			item, err := account.Files().Get(command.Context(), args[0])
			if err != nil {
				return err
			}
			return writeFile(command, globalFlags, item)
		},
	}
}

func newDownloadCommand(deps common.CommandDependencies, accountID *string) *cobra.Command {
	var outputPath string
	var outputDir string

	command := &cobra.Command{
		Use:   "download <file-id>",
		Short: "Download file contents",
		Example: strings.Join([]string{
			"  cloudstore file download -a a1 f1 > report.pdf",
			"  cloudstore file download -a a1 f1 --to report.pdf",
			"  cloudstore file download -a a1 f1 --to-dir ./downloads",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}

			var item *resource.File
			target := outputPath
			if strings.TrimSpace(outputDir) != "" {
				item, err = account.Files().Get(command.Context(), args[0])
				if err != nil {
					return err
				}
				name, err := item.GetString("name")
				if err != nil {
					return err
				}
				target, err = common.DownloadTarget(outputDir, name)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(outputDir, 0o755); err != nil {
					return common.ValidationError("failed to create download directory "+outputDir, err)
				}
			} else {
				item, err = account.Files().New(args[0])
				if err != nil {
					return err
				}
			}

			data, err := item.Contents(command.Context())
			if err != nil {
				return err
			}

			debugctx.Printf(command.Context(), "file download id=%q bytes=%d target=%q", args[0], len(data), target)
			return common.WriteBytes(command, target, data)
		},
	}

	command.Flags().StringVar(&outputPath, "to", "", "write contents to this path instead of stdout")
	command.Flags().StringVar(&outputDir, "to-dir", "", "write contents into this directory using the remote file name")
	command.MarkFlagsMutuallyExclusive("to", "to-dir")
	return command
}

func newUploadCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	var name string
	var parentID string
	var contentType string
	var overwrite bool

	command := &cobra.Command{
		Use:   "upload <path|->",
		Short: "Upload a new file",
		Example: strings.Join([]string{
			"  cloudstore file upload -a a1 ./report.pdf",
			"  cat notes.txt | cloudstore file upload -a a1 - --name notes.txt --parent f123",
		}, "\n"),
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			data, err := common.ReadInput(command, args[0])
			if err != nil {
				return err
			}

			fileName := strings.TrimSpace(name)
			if fileName == "" && args[0] != "-" {
				fileName = filepath.Base(args[0])
			}

			item, err := account.Files().Upload(command.Context(), resource.FileUpload{
				Name:        fileName,
				ParentID:    parentID,
				Data:        data,
				ContentType: contentType,
				Overwrite:   overwrite,
			})
			if err != nil {
				return err
			}
			return writeFile(command, globalFlags, item)
		},
	}

	command.Flags().StringVar(&name, "name", "", "file name (defaults to the source file name)")
	command.Flags().StringVar(&parentID, "parent", "", "destination folder id (defaults to root)")
	command.Flags().StringVar(&contentType, "content-type", "", "content type of the uploaded part")
	command.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file with the same name")
	return command
}

func newUpdateContentsCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "update-contents <file-id> <path|->",
		Short: "Replace file contents",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			data, err := common.ReadInput(command, args[1])
			if err != nil {
				return err
			}
			item, err := account.Files().New(args[0])
			if err != nil {
				return err
			}
			if err := item.UpdateContents(command.Context(), data); err != nil {
				return err
			}
			return writeFile(command, globalFlags, item)
		},
	}
}

func newCopyCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	var name string

	command := &cobra.Command{
		Use:   "copy <file-id> <destination-folder-id>",
		Short: "Copy a file into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			item, err := account.Files().New(args[0])
			if err != nil {
				return err
			}
			copied, err := item.Copy(command.Context(), args[1], name)
			if err != nil {
				return err
			}
			return writeFile(command, globalFlags, copied)
		},
	}

	command.Flags().StringVar(&name, "name", "", "name of the copy")
	return command
}

func newRenameCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, accountID *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <file-id> <new-name>",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			if strings.TrimSpace(args[1]) == "" {
				return common.ValidationError("new name is required", nil)
			}
			item, err := account.Files().New(args[0])
			if err != nil {
				return err
			}
			// Start from an empty snapshot so only the name is sent.
			if err := item.Populate(map[string]any{}); err != nil {
				return err
			}
			item.Set("name", args[1])
			if err := item.Save(command.Context()); err != nil {
				return err
			}
			return writeFile(command, globalFlags, item)
		},
	}
}

func newDeleteCommand(deps common.CommandDependencies, accountID *string) *cobra.Command {
	var permanent bool

	command := &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			account, err := common.RequireAccount(deps, *accountID)
			if err != nil {
				return err
			}
			item, err := account.Files().New(args[0])
			if err != nil {
				return err
			}

			var query url.Values
			if permanent {
				query = url.Values{"permanent": []string{"true"}}
			}
			return item.Delete(command.Context(), query)
		},
	}

	command.Flags().BoolVar(&permanent, "permanent", false, "skip the provider trash")
	return command
}

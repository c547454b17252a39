package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// NewAppsCommand creates the apps command group.
func NewAppsCommand() *cobra.Command {
	cmd := NewResourceCommand(ResourceConfig[dfapi.App]{
		Use:     "apps",
		Aliases: []string{"app"},
		Short:   "Manage applications",
		Long:    "List, create, update, delete and export DreamFactory applications",
		Codec:   dfapi.AppCodec,
		Columns: []string{"id", "name", "api_name", "is_active", "description"},
		Client:  func(c dfapi.Client) dfapi.ResourceClient[dfapi.App] { return c.Apps() },
	})

	cmd.AddCommand(newAppsPackageCommand())
	cmd.AddCommand(newAppsSDKCommand())

	return cmd
}

func newAppsPackageCommand() *cobra.Command {
	var (
		outputFile string
		options    = dfapi.DefaultPackageOptions()
	)

	cmd := &cobra.Command{
		Use:   "package ID",
		Short: "Download an app package",
		Long:  "Download an application as an importable package archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			data, err := c.Apps().DownloadPackage(context.Background(), ids[0], options)
			if err != nil {
				return fmt.Errorf("failed to download package for app %d: %w", ids[0], err)
			}

			return writeDownload(cmd, outputFile, fmt.Sprintf("app-%d.zip", ids[0]), data)
		},
	}

	cmd.Flags().StringVar(&outputFile, "output-file", "", "file to write (default app-ID.zip)")
	cmd.Flags().BoolVar(&options.IncludeFiles, "include-files", true, "include hosted files")
	cmd.Flags().BoolVar(&options.IncludeServices, "include-services", true, "include service definitions")
	cmd.Flags().BoolVar(&options.IncludeSchema, "include-schema", true, "include database schema")

	return cmd
}

func newAppsSDKCommand() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "sdk ID",
		Short: "Download the client SDK for an app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			data, err := c.Apps().DownloadSDK(context.Background(), ids[0])
			if err != nil {
				return fmt.Errorf("failed to download SDK for app %d: %w", ids[0], err)
			}

			return writeDownload(cmd, outputFile, fmt.Sprintf("app-%d-sdk.zip", ids[0]), data)
		},
	}

	cmd.Flags().StringVar(&outputFile, "output-file", "", "file to write (default app-ID-sdk.zip)")

	return cmd
}

func writeDownload(cmd *cobra.Command, path, fallback string, data []byte) error {
	if path == "" {
		path = fallback
	}

	err := os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	printf(cmd, "Wrote %d bytes to %s\n", len(data), path)

	return nil
}

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// NewScriptsCommand creates the scripts command group.
func NewScriptsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scripts",
		Aliases: []string{"script"},
		Short:   "Manage server-side scripts",
	}

	cmd.AddCommand(newScriptsListCommand())
	cmd.AddCommand(newScriptsWriteCommand())
	cmd.AddCommand(newScriptsRunCommand())
	cmd.AddCommand(newScriptsDeleteCommand())

	return cmd
}

func newScriptsListCommand() *cobra.Command {
	var includeUser bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			scripts, err := c.Scripts().List(context.Background(), includeUser)
			if err != nil {
				return fmt.Errorf("failed to list scripts: %w", err)
			}

			handled, err := writeStructured(cmd.OutOrStdout(), scripts)
			if handled {
				return err
			}

			if len(scripts) == 0 {
				printf(cmd, "No scripts found\n")

				return nil
			}

			rows := make([][]string, 0, len(scripts))
			for _, script := range scripts {
				rows = append(rows, []string{deref(script.Name), deref(script.Type), boolCell(script.IsUserScript)})
			}

			return renderTable(cmd.OutOrStdout(), []string{"Name", "Type", "User"}, rows)
		},
	}

	cmd.Flags().BoolVar(&includeUser, "include-user", false, "include user scripts")

	return cmd
}

func newScriptsWriteCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "write ID",
		Short: "Create or replace a script",
		Long:  "Upload a script body from a file (or stdin with --file -) under the given script id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readScriptBody(cmd, file)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			script, err := c.Scripts().Write(context.Background(), args[0], body)
			if err != nil {
				return fmt.Errorf("failed to write script %s: %w", args[0], err)
			}

			handled, err := writeStructured(cmd.OutOrStdout(), script)
			if handled {
				return err
			}

			printf(cmd, "Wrote script %s (%d bytes)\n", args[0], len(body))

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file containing the script body")

	return cmd
}

func readScriptBody(cmd *cobra.Command, file string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch file {
	case "":
		return "", fmt.Errorf("script body: %w", constants.ErrRecordFileRequired)
	case "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(file)
	}

	if err != nil {
		return "", fmt.Errorf("failed to read script body: %w", err)
	}

	return string(data), nil
}

func newScriptsRunCommand() *cobra.Command {
	var (
		params    []string
		logOutput bool
	)

	cmd := &cobra.Command{
		Use:   "run ID",
		Short: "Run a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseKeyValues(params)
			if err != nil {
				return err
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			result, err := c.Scripts().Run(context.Background(), args[0], values, logOutput)
			if err != nil {
				return fmt.Errorf("failed to run script %s: %w", args[0], err)
			}

			printf(cmd, "%s\n", result)

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "script parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&logOutput, "log-output", true, "ask the server to log script output")

	return cmd
}

func newScriptsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			err = c.Scripts().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete script %s: %w", args[0], err)
			}

			printf(cmd, "Deleted script %s\n", args[0])

			return nil
		},
	}
}

func deref[T any](v *T) string {
	if v == nil {
		return ""
	}

	return fmt.Sprint(*v)
}

func boolCell(v *bool) string {
	if v == nil {
		return ""
	}

	return formatCell(*v)
}

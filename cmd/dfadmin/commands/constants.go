package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewConstantsCommand creates the constants command group.
func NewConstantsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "constants",
		Aliases: []string{"constant"},
		Short:   "Read server enumerations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List constant names",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			names, err := c.Constants().List(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list constants: %w", err)
			}

			handled, err := writeStructured(cmd.OutOrStdout(), names)
			if handled {
				return err
			}

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name})
			}

			return renderTable(cmd.OutOrStdout(), []string{"Name"}, rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get NAME",
		Short: "Show the values of a constant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			values, err := c.Constants().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get constant %s: %w", args[0], err)
			}

			handled, err := writeStructured(cmd.OutOrStdout(), values)
			if handled {
				return err
			}

			return renderProperties(cmd.OutOrStdout(), values)
		},
	})

	return cmd
}

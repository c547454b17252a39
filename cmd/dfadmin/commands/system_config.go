package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
)

// NewSystemConfigCommand creates the system-config command group.
func NewSystemConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system-config",
		Short: "Show or change instance settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show instance settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			config, err := c.SystemConfig().Get(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get system config: %w", err)
			}

			return outputSystemConfig(cmd, config)
		},
	})

	cmd.AddCommand(newSystemConfigSetCommand())

	return cmd
}

func newSystemConfigSetCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change instance settings from a JSON or YAML file",
		Long:  "Only the settings present in the file are sent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			configs, err := readRecords[dfapi.SystemConfig](file)
			if err != nil {
				return err
			}

			if len(configs) != 1 {
				return fmt.Errorf("%w: expected exactly one settings object", constants.ErrInvalidRecordFormat)
			}

			c, err := createClient()
			if err != nil {
				return err
			}

			updated, err := c.SystemConfig().Set(context.Background(), &configs[0])
			if err != nil {
				return fmt.Errorf("failed to set system config: %w", err)
			}

			return outputSystemConfig(cmd, updated)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "file containing the settings")

	return cmd
}

func outputSystemConfig(cmd *cobra.Command, config *dfapi.SystemConfig) error {
	handled, err := writeStructured(cmd.OutOrStdout(), config)
	if handled {
		return err
	}

	row, err := toRow(config)
	if err != nil {
		return err
	}

	props := make(map[string]string, len(row))
	for key, value := range row {
		props[key] = formatCell(value)
	}

	return renderProperties(cmd.OutOrStdout(), props)
}

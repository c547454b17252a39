package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewEnvironmentCommand creates the environment command.
func NewEnvironmentCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "environment",
		Aliases: []string{"env"},
		Short:   "Show server environment information",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := createClient()
			if err != nil {
				return err
			}

			env, err := c.GetEnvironment(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get environment: %w", err)
			}

			handled, err := writeStructured(cmd.OutOrStdout(), env)
			if handled {
				return err
			}

			props := map[string]string{}

			if env.Server != nil {
				props["Server OS"] = deref(env.Server.ServerOS)
				props["Release"] = deref(env.Server.Release)
				props["Version"] = deref(env.Server.Version)
				props["Host"] = deref(env.Server.Host)
			}

			for key, value := range env.Platform {
				props["Platform "+key] = formatCell(value)
			}

			if general, ok := env.PhpInfo["general"]; ok {
				if version, ok := general.Info["version"]; ok {
					props["PHP Version"] = formatCell(version)
				}
			}

			return renderProperties(cmd.OutOrStdout(), props)
		},
	}
}

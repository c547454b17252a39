package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// Config represents the CLI configuration.
type Config struct {
	Instances       map[string]*InstanceConfig `json:"instances,omitempty"        mapstructure:"instances"        yaml:"instances,omitempty"`
	CurrentInstance string                     `json:"current_instance,omitempty" mapstructure:"current_instance" yaml:"current_instance,omitempty"`

	Output string `json:"output,omitempty" mapstructure:"output" yaml:"output,omitempty"`
}

// InstanceConfig is one saved DreamFactory instance.
type InstanceConfig struct {
	BaseURL      string `json:"base_url"                mapstructure:"base_url"      yaml:"base_url"`
	AppName      string `json:"app_name,omitempty"      mapstructure:"app_name"      yaml:"app_name,omitempty"`
	APIKey       string `json:"api_key,omitempty"       mapstructure:"api_key"       yaml:"api_key,omitempty"`
	Email        string `json:"email,omitempty"         mapstructure:"email"         yaml:"email,omitempty"`
	SessionToken string `json:"session_token,omitempty" mapstructure:"session_token" yaml:"session_token,omitempty"`
	LastLogin    string `json:"last_login,omitempty"    mapstructure:"last_login"    yaml:"last_login,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage dfadmin configuration including saved instances and settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUseCommand())
	cmd.AddCommand(newConfigRemoveCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the saved instances and global settings. Session tokens are masked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := maskedConfig(loadConfig())

			switch viper.GetString("output") {
			case OutputFormatJSON:
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")

				return encoder.Encode(config)
			case OutputFormatYAML:
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(config)
			default:
				return displayConfigTable(cmd, config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a global value (output) or a value of the --instance or current instance (base_url, app_name, api_key, email)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if args[0] == "output" {
				config.Output = args[1]
			} else {
				name := viper.GetString("instance")
				if name == "" {
					name = config.CurrentInstance
				}

				inst, err := findInstance(config, name)
				if err != nil {
					return err
				}

				err = setInstanceValue(inst, args[0], args[1])
				if err != nil {
					return err
				}
			}

			err := saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use INSTANCE",
		Short: "Switch the current instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			_, err := findInstance(config, args[0])
			if err != nil {
				return err
			}

			config.CurrentInstance = args[0]

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Now using instance '%s'\n", args[0])

			return nil
		},
	}
}

func newConfigRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove INSTANCE",
		Short: "Remove a saved instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			_, err := findInstance(config, args[0])
			if err != nil {
				return err
			}

			delete(config.Instances, args[0])

			if config.CurrentInstance == args[0] {
				config.CurrentInstance = ""
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed instance '%s'\n", args[0])

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file and all saved instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cleared all configuration")

			return nil
		},
	}
}

func loadConfig() *Config {
	config := &Config{
		Instances:       make(map[string]*InstanceConfig),
		CurrentInstance: viper.GetString("current_instance"),
		Output:          viper.GetString("output"),
	}

	instances := make(map[string]*InstanceConfig)

	err := viper.UnmarshalKey("instances", &instances)
	if err == nil {
		for name, inst := range instances {
			if inst != nil {
				config.Instances[name] = inst
			}
		}
	}

	return config
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".dfadmin", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// Keep the in-memory view in sync for the rest of this process.
	viper.Set("instances", config.Instances)
	viper.Set("current_instance", config.CurrentInstance)

	return nil
}

func findInstance(config *Config, name string) (*InstanceConfig, error) {
	if len(config.Instances) == 0 {
		return nil, constants.ErrNoInstancesConfigured
	}

	inst, ok := config.Instances[name]
	if !ok {
		return nil, fmt.Errorf("instance '%s': %w", name, constants.ErrInstanceNotFound)
	}

	return inst, nil
}

func setInstanceValue(inst *InstanceConfig, key, value string) error {
	switch key {
	case "base_url":
		inst.BaseURL = value
	case "app_name":
		inst.AppName = value
	case "api_key":
		inst.APIKey = value
	case "email":
		inst.Email = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func maskedConfig(config *Config) *Config {
	masked := &Config{
		Instances:       make(map[string]*InstanceConfig, len(config.Instances)),
		CurrentInstance: config.CurrentInstance,
		Output:          config.Output,
	}

	for name, inst := range config.Instances {
		copied := *inst
		if copied.SessionToken != "" {
			copied.SessionToken = Masked
		}

		if copied.APIKey != "" {
			copied.APIKey = Masked
		}

		masked.Instances[name] = &copied
	}

	return masked
}

func displayConfigTable(cmd *cobra.Command, config *Config) error {
	out := cmd.OutOrStdout()

	if len(config.Instances) == 0 {
		_, _ = fmt.Fprintln(out, "No instances configured. Use 'dfadmin login' to add one.")

		return nil
	}

	names := make([]string, 0, len(config.Instances))
	for name := range config.Instances {
		names = append(names, name)
	}

	sort.Strings(names)

	table := tablewriter.NewWriter(out)
	table.Header("Instance", "Base URL", "App", "Email", "Logged In", "Current")

	for _, name := range names {
		inst := config.Instances[name]

		current := ""
		if name == config.CurrentInstance {
			current = Yes
		}

		loggedIn := NotAvailable
		if at, err := time.Parse(time.RFC3339, inst.LastLogin); err == nil {
			loggedIn = at.Local().Format(constants.TimestampDisplayFormat)
		}

		_ = table.Append([]string{name, inst.BaseURL, inst.AppName, inst.Email, loggedIn, current})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

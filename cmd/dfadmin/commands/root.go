package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/dfapi/internal/constants"
)

// persistentFlags maps flag names to their viper keys.
var persistentFlags = map[string]string{
	"config":         "config",
	"url":            "url",
	"app-name":       "app_name",
	"api-key":        "api_key",
	"email":          "email",
	"session-token":  "session_token",
	"instance":       "instance",
	"output":         "output",
	"verbose":        "verbose",
	"rate-limit":     "rate_limit",
	"retries":        "retries",
	"audit-nats-url": "audit_nats_url",
	"audit-subject":  "audit_subject",
}

// NewRootCommand creates the dfadmin command tree.
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dfadmin",
		Short: "DreamFactory system administration CLI",
		Long: `A command-line interface for the DreamFactory /rest/system API.

Manage apps, roles, users, services, scripts, event listeners and instance
settings on one or more DreamFactory instances.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			CloseAudit()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.dfadmin/config.yml)")
	flags.StringP("url", "u", "", "instance URL")
	flags.String("app-name", "", "application name sent with every request")
	flags.String("api-key", "", "application API key")
	flags.String("email", "", "account email for session login")
	flags.String("session-token", "", "existing session token")
	flags.StringP("instance", "i", "", "saved instance to use (default is the current instance)")
	flags.StringP("output", "o", OutputFormatTable, "output format (table, json, yaml)")
	flags.BoolP("verbose", "v", false, "log requests and responses to stderr")
	flags.Float64("rate-limit", 0, "maximum requests per second (0 disables limiting)")
	flags.Int("retries", 0, "retries for transient failures")
	flags.String("audit-nats-url", "", "publish an audit record for every call to this NATS server")
	flags.String("audit-subject", constants.DefaultAuditSubject, "NATS subject for audit records")

	for flag, key := range persistentFlags {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(NewLoginCommand())
	rootCmd.AddCommand(NewLogoutCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewAppsCommand())
	rootCmd.AddCommand(NewResourceCommands()...)
	rootCmd.AddCommand(NewScriptsCommand())
	rootCmd.AddCommand(NewEventsCommand())
	rootCmd.AddCommand(NewSystemConfigCommand())
	rootCmd.AddCommand(NewConstantsCommand())
	rootCmd.AddCommand(NewEnvironmentCommand())

	return rootCmd
}

// InitConfig loads .env, the config file and DFADMIN_* environment variables.
func InitConfig() {
	_ = godotenv.Load()

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".dfadmin")

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("DFADMIN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			_, _ = fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

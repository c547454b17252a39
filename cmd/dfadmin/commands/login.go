package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/dfapi/internal/auth"
	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/pkg/dfclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		name     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a DreamFactory instance",
		Long: "Open an admin session and save the instance. Values not given as flags " +
			"are taken from the saved instance or prompted for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			inst, current := resolveInstance()
			reader := bufio.NewReader(cmd.InOrStdin())

			if inst.BaseURL == "" {
				inst.BaseURL = prompt(cmd, reader, "Instance URL: ")
			}

			if inst.BaseURL == "" {
				return constants.ErrNoBaseURL
			}

			inst.BaseURL = dfclient.NormalizeBaseURL(inst.BaseURL)

			if inst.Email == "" {
				inst.Email = prompt(cmd, reader, "Email: ")
			}

			if password == "" {
				password = viper.GetString("password")
			}

			if password == "" {
				var err error

				password, err = readPassword(cmd, reader)
				if err != nil {
					return err
				}
			}

			manager := auth.NewSessionTokenManager(&auth.SessionConfig{
				BaseURL:  inst.BaseURL,
				AppName:  inst.AppName,
				APIKey:   inst.APIKey,
				Email:    inst.Email,
				Password: password,
			})

			token, err := manager.GetToken(context.Background())
			if err != nil {
				return fmt.Errorf("failed to log in to %s: %w", inst.BaseURL, err)
			}

			if name == "" {
				name = current
			}

			if name == "" {
				name = instanceNameFromURL(inst.BaseURL)
			}

			inst.SessionToken = token
			inst.LastLogin = time.Now().UTC().Format(time.RFC3339)

			config := loadConfig()
			config.Instances[name] = inst
			config.CurrentInstance = name

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			user := inst.Email
			if session := manager.Session(); session != nil && session.Name != "" {
				user = session.Name
			}

			printf(cmd, "Logged in to %s as %s (instance '%s')\n", inst.BaseURL, user, name)

			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name to save the instance under (default is the URL host)")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session for the current instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, name := resolveInstance()

			config := loadConfig()

			inst, err := findInstance(config, name)
			if err != nil {
				return err
			}

			inst.SessionToken = ""

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			printf(cmd, "Logged out of '%s'\n", name)

			return nil
		},
	}
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) string {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), label)

	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

func readPassword(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		data, err := term.ReadPassword(int(file.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())

		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}

		return string(data), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func instanceNameFromURL(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return baseURL
	}

	return parsed.Host
}

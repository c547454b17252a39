package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/dfapi/internal/auth"
	"github.com/fivetwenty-io/dfapi/internal/client"
	"github.com/fivetwenty-io/dfapi/internal/constants"
	"github.com/fivetwenty-io/dfapi/internal/http"
	"github.com/fivetwenty-io/dfapi/pkg/dfapi"
	"github.com/fivetwenty-io/dfapi/pkg/dfclient"
)

// auditConn is opened lazily by createClient and drained by CloseAudit.
var auditConn *nats.Conn

// resolveInstance merges the saved instance with flag and environment
// overrides. The returned name is empty when nothing is saved.
func resolveInstance() (*InstanceConfig, string) {
	config := loadConfig()

	name := viper.GetString("instance")
	if name == "" {
		name = config.CurrentInstance
	}

	resolved := &InstanceConfig{}

	if inst, ok := config.Instances[name]; ok {
		copied := *inst
		resolved = &copied
	} else {
		name = ""
	}

	if v := viper.GetString("url"); v != "" {
		resolved.BaseURL = v
	}

	if v := viper.GetString("app_name"); v != "" {
		resolved.AppName = v
	}

	if v := viper.GetString("api_key"); v != "" {
		resolved.APIKey = v
	}

	if v := viper.GetString("email"); v != "" {
		resolved.Email = v
	}

	if v := viper.GetString("session_token"); v != "" {
		resolved.SessionToken = v
	}

	return resolved, name
}

func newLogger() dfapi.Logger {
	if !viper.GetBool("verbose") {
		return nil
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Str("component", "dfadmin").Logger().
		Level(zerolog.DebugLevel)

	return dfapi.NewZerologLogger(logger)
}

func buildInterceptors(logger dfapi.Logger) (*dfapi.InterceptorChain, error) {
	chain := dfapi.NewInterceptorChain()

	if logger != nil {
		chain.AddRequestInterceptor(dfapi.LoggingInterceptor(logger))
		chain.AddResponseInterceptor(dfapi.LoggingResponseInterceptor(logger))
	}

	natsURL := viper.GetString("audit_nats_url")
	if natsURL == "" {
		return chain, nil
	}

	if auditConn == nil {
		conn, err := dfapi.ConnectAudit(natsURL, nats.Name("dfadmin"))
		if err != nil {
			return nil, err
		}

		auditConn = conn
	}

	subject := viper.GetString("audit_subject")
	if subject == "" {
		subject = constants.DefaultAuditSubject
	}

	auditLogger := logger
	if auditLogger == nil {
		auditLogger = dfapi.NopLogger{}
	}

	chain.AddResponseInterceptor(dfapi.AuditInterceptor(auditConn, subject, auditLogger))

	return chain, nil
}

// CloseAudit flushes pending audit records. It is safe to call when no
// audit connection was opened.
func CloseAudit() {
	if auditConn == nil {
		return
	}

	_ = auditConn.Drain()
	auditConn = nil
}

func createTokenManager(inst *InstanceConfig, instanceName string) http.TokenManager {
	password := viper.GetString("password")

	if inst.Email != "" && password != "" {
		sessionConfig := &auth.SessionConfig{
			BaseURL:  inst.BaseURL,
			AppName:  inst.AppName,
			APIKey:   inst.APIKey,
			Email:    inst.Email,
			Password: password,
			Token:    inst.SessionToken,
		}

		if instanceName != "" {
			return auth.NewConfigTokenManager(sessionConfig, NewConfigPersister(), instanceName)
		}

		return auth.NewSessionTokenManager(sessionConfig)
	}

	if inst.SessionToken != "" {
		return auth.NewStaticTokenManager(inst.SessionToken)
	}

	return nil
}

func createClient() (dfapi.Client, error) {
	inst, name := resolveInstance()

	if strings.TrimSpace(inst.BaseURL) == "" {
		return nil, fmt.Errorf("%w, use --url or 'dfadmin login'", constants.ErrNoBaseURL)
	}

	inst.BaseURL = dfclient.NormalizeBaseURL(inst.BaseURL)

	logger := newLogger()

	chain, err := buildInterceptors(logger)
	if err != nil {
		return nil, err
	}

	config := &dfapi.Config{
		BaseURL:      inst.BaseURL,
		AppName:      inst.AppName,
		APIKey:       inst.APIKey,
		Debug:        viper.GetBool("verbose"),
		Logger:       logger,
		RateLimit:    viper.GetFloat64("rate_limit"),
		RetryMax:     viper.GetInt("retries"),
		Interceptors: chain,
	}

	c, err := client.NewWithTokenManager(config, createTokenManager(inst, name))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, nil
}

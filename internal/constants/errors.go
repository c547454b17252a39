package constants

import "errors"

// Configuration errors.
var (
	ErrNoInstancesConfigured = errors.New("no instances configured, use 'dfadmin login' to add one")
	ErrInstanceNotFound      = errors.New("instance configuration not found")
	ErrNoBaseURL             = errors.New("no DreamFactory base URL configured")
	ErrUnknownConfigKey      = errors.New("unknown configuration key")
)

// Authentication errors.
var (
	ErrNoSessionID          = errors.New("session response did not contain a session id")
	ErrCredentialsRequired  = errors.New("email and password are required for session login")
	ErrStaticTokenNoRefresh = errors.New("static session token cannot be refreshed")
)

// Validation errors.
var (
	ErrInvalidBoolFlag     = errors.New("flag must be 'true' or 'false'")
	ErrInvalidKeyValue     = errors.New("invalid key=value pair")
	ErrRecordFileRequired  = errors.New("--file is required")
	ErrAtLeastOneIDNeeded  = errors.New("at least one id is required")
	ErrInvalidRecordFormat = errors.New("record file must contain a JSON or YAML list of records")
)

package dfapi

// Relation wire keys.
const (
	RelatedUserCreated         = "user_created"
	RelatedUserLastModified    = "user_last_modified"
	RelatedStorageService      = "storage_service"
	RelatedRoles               = "roles"
	RelatedAppGroups           = "app_groups"
	RelatedServices            = "services"
	RelatedAppToAppGroups      = "app_to_app_groups"
	RelatedApps                = "apps"
	RelatedDefaultApp          = "default_app"
	RelatedUsers               = "users"
	RelatedRoleServiceAccesses = "role_service_accesses"
	RelatedRoleSystemAccesses  = "role_system_accesses"
	RelatedRole                = "role"
	RelatedDevices             = "devices"
	RelatedUser                = "user"
	RelatedProvider            = "provider"
	RelatedProviderUsers       = "provider_users"
)

// App is a registered application.
type App struct {
	ID                    *int    `json:"id,omitempty"                      yaml:"id,omitempty"`
	Name                  *string `json:"name,omitempty"                    yaml:"name,omitempty"`
	APIName               *string `json:"api_name,omitempty"                yaml:"api_name,omitempty"`
	Description           *string `json:"description,omitempty"             yaml:"description,omitempty"`
	IsActive              *bool   `json:"is_active,omitempty"               yaml:"is_active,omitempty"`
	URL                   *string `json:"url,omitempty"                     yaml:"url,omitempty"`
	IsURLExternal         *bool   `json:"is_url_external,omitempty"         yaml:"is_url_external,omitempty"`
	ImportURL             *string `json:"import_url,omitempty"              yaml:"import_url,omitempty"`
	StorageServiceID      *int    `json:"storage_service_id,omitempty"      yaml:"storage_service_id,omitempty"`
	StorageContainer      *string `json:"storage_container,omitempty"       yaml:"storage_container,omitempty"`
	LaunchURL             *string `json:"launch_url,omitempty"              yaml:"launch_url,omitempty"`
	RequiresFullscreen    *bool   `json:"requires_fullscreen,omitempty"     yaml:"requires_fullscreen,omitempty"`
	AllowFullscreenToggle *bool   `json:"allow_fullscreen_toggle,omitempty" yaml:"allow_fullscreen_toggle,omitempty"`
	ToggleLocation        *string `json:"toggle_location,omitempty"         yaml:"toggle_location,omitempty"`
	RequiresPlugin        *bool   `json:"requires_plugin,omitempty"         yaml:"requires_plugin,omitempty"`
	Audit                 `yaml:",inline"`

	StorageService   *Service   `json:"storage_service,omitempty"    yaml:"storage_service,omitempty"`
	UserCreated      *User      `json:"user_created,omitempty"       yaml:"user_created,omitempty"`
	UserLastModified *User      `json:"user_last_modified,omitempty" yaml:"user_last_modified,omitempty"`
	Roles            []Role     `json:"roles,omitempty"              yaml:"roles,omitempty"`
	AppGroups        []AppGroup `json:"app_groups,omitempty"         yaml:"app_groups,omitempty"`
	Services         []Service  `json:"services,omitempty"           yaml:"services,omitempty"`
}

// AppGroup is a named set of applications.
type AppGroup struct {
	ID          *int    `json:"id,omitempty"          yaml:"id,omitempty"`
	Name        *string `json:"name,omitempty"        yaml:"name,omitempty"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	Audit       `yaml:",inline"`

	UserCreated      *User           `json:"user_created,omitempty"       yaml:"user_created,omitempty"`
	UserLastModified *User           `json:"user_last_modified,omitempty" yaml:"user_last_modified,omitempty"`
	AppToAppGroups   []AppToAppGroup `json:"app_to_app_groups,omitempty"  yaml:"app_to_app_groups,omitempty"`
	Apps             []App           `json:"apps,omitempty"               yaml:"apps,omitempty"`
}

// AppToAppGroup is a membership row between an app and an app group.
type AppToAppGroup struct {
	ID      *int `json:"id,omitempty"       yaml:"id,omitempty"`
	AppID   *int `json:"app_id,omitempty"   yaml:"app_id,omitempty"`
	GroupID *int `json:"group_id,omitempty" yaml:"group_id,omitempty"`
}

// Role grants access to services and system resources.
type Role struct {
	ID           *int    `json:"id,omitempty"             yaml:"id,omitempty"`
	Name         *string `json:"name,omitempty"           yaml:"name,omitempty"`
	Description  *string `json:"description,omitempty"    yaml:"description,omitempty"`
	IsActive     *bool   `json:"is_active,omitempty"      yaml:"is_active,omitempty"`
	DefaultAppID *int    `json:"default_app_id,omitempty" yaml:"default_app_id,omitempty"`
	Audit        `yaml:",inline"`

	DefaultApp          *App                `json:"default_app,omitempty"           yaml:"default_app,omitempty"`
	UserCreated         *User               `json:"user_created,omitempty"          yaml:"user_created,omitempty"`
	UserLastModified    *User               `json:"user_last_modified,omitempty"    yaml:"user_last_modified,omitempty"`
	Users               []User              `json:"users,omitempty"                 yaml:"users,omitempty"`
	Apps                []App               `json:"apps,omitempty"                  yaml:"apps,omitempty"`
	Services            []Service           `json:"services,omitempty"              yaml:"services,omitempty"`
	RoleServiceAccesses []RoleServiceAccess `json:"role_service_accesses,omitempty" yaml:"role_service_accesses,omitempty"`
	RoleSystemAccesses  []RoleSystemAccess  `json:"role_system_accesses,omitempty"  yaml:"role_system_accesses,omitempty"`
}

// RoleServiceAccess grants a role verbs on a service component.
type RoleServiceAccess struct {
	ID          *int    `json:"id,omitempty"           yaml:"id,omitempty"`
	RoleID      *int    `json:"role_id,omitempty"      yaml:"role_id,omitempty"`
	ServiceID   *int    `json:"service_id,omitempty"   yaml:"service_id,omitempty"`
	Component   *string `json:"component,omitempty"    yaml:"component,omitempty"`
	VerbMask    *int    `json:"verb_mask,omitempty"    yaml:"verb_mask,omitempty"`
	RequestorID *int    `json:"requestor_id,omitempty" yaml:"requestor_id,omitempty"`
	Filters     []any   `json:"filters,omitempty"      yaml:"filters,omitempty"`
	FilterOp    *string `json:"filter_op,omitempty"    yaml:"filter_op,omitempty"`
}

// RoleSystemAccess grants a role verbs on a system component.
type RoleSystemAccess struct {
	ID        *int    `json:"id,omitempty"        yaml:"id,omitempty"`
	RoleID    *int    `json:"role_id,omitempty"   yaml:"role_id,omitempty"`
	Component *string `json:"component,omitempty" yaml:"component,omitempty"`
	VerbMask  *int    `json:"verb_mask,omitempty" yaml:"verb_mask,omitempty"`
	Filters   []any   `json:"filters,omitempty"   yaml:"filters,omitempty"`
	FilterOp  *string `json:"filter_op,omitempty" yaml:"filter_op,omitempty"`
}

// User is a system or application user. Password is write-only.
type User struct {
	ID           *int       `json:"id,omitempty"             yaml:"id,omitempty"`
	Name         *string    `json:"name,omitempty"           yaml:"name,omitempty"`
	Username     *string    `json:"username,omitempty"       yaml:"username,omitempty"`
	FirstName    *string    `json:"first_name,omitempty"     yaml:"first_name,omitempty"`
	LastName     *string    `json:"last_name,omitempty"      yaml:"last_name,omitempty"`
	Email        *string    `json:"email,omitempty"          yaml:"email,omitempty"`
	Password     *string    `json:"password,omitempty"       yaml:"password,omitempty"`
	Phone        *string    `json:"phone,omitempty"          yaml:"phone,omitempty"`
	IsActive     *bool      `json:"is_active,omitempty"      yaml:"is_active,omitempty"`
	IsSysAdmin   *bool      `json:"is_sys_admin,omitempty"   yaml:"is_sys_admin,omitempty"`
	DefaultAppID *int       `json:"default_app_id,omitempty" yaml:"default_app_id,omitempty"`
	RoleID       *int       `json:"role_id,omitempty"        yaml:"role_id,omitempty"`
	LastLogin    *Timestamp `json:"last_login_date,omitempty" yaml:"last_login_date,omitempty"`
	Audit        `yaml:",inline"`

	DefaultApp       *App     `json:"default_app,omitempty"        yaml:"default_app,omitempty"`
	Role             *Role    `json:"role,omitempty"               yaml:"role,omitempty"`
	UserCreated      *User    `json:"user_created,omitempty"       yaml:"user_created,omitempty"`
	UserLastModified *User    `json:"user_last_modified,omitempty" yaml:"user_last_modified,omitempty"`
	Devices          []Device `json:"devices,omitempty"            yaml:"devices,omitempty"`
}

// Service is a configured service such as a database or file store.
type Service struct {
	ID          *int           `json:"id,omitempty"          yaml:"id,omitempty"`
	Name        *string        `json:"name,omitempty"        yaml:"name,omitempty"`
	Label       *string        `json:"label,omitempty"       yaml:"label,omitempty"`
	Description *string        `json:"description,omitempty" yaml:"description,omitempty"`
	IsActive    *bool          `json:"is_active,omitempty"   yaml:"is_active,omitempty"`
	Type        *string        `json:"type,omitempty"        yaml:"type,omitempty"`
	Mutable     *bool          `json:"mutable,omitempty"     yaml:"mutable,omitempty"`
	Deletable   *bool          `json:"deletable,omitempty"   yaml:"deletable,omitempty"`
	Config      map[string]any `json:"config,omitempty"      yaml:"config,omitempty"`
	Audit       `yaml:",inline"`

	UserCreated      *User  `json:"user_created,omitempty"       yaml:"user_created,omitempty"`
	UserLastModified *User  `json:"user_last_modified,omitempty" yaml:"user_last_modified,omitempty"`
	Apps             []App  `json:"apps,omitempty"               yaml:"apps,omitempty"`
	Roles            []Role `json:"roles,omitempty"              yaml:"roles,omitempty"`
}

// EmailTemplate is a stored email body used by system notifications.
type EmailTemplate struct {
	ID          *int           `json:"id,omitempty"          yaml:"id,omitempty"`
	Name        *string        `json:"name,omitempty"        yaml:"name,omitempty"`
	Description *string        `json:"description,omitempty" yaml:"description,omitempty"`
	To          []string       `json:"to,omitempty"          yaml:"to,omitempty"`
	CC          []string       `json:"cc,omitempty"          yaml:"cc,omitempty"`
	BCC         []string       `json:"bcc,omitempty"         yaml:"bcc,omitempty"`
	Subject     *string        `json:"subject,omitempty"     yaml:"subject,omitempty"`
	BodyText    *string        `json:"body_text,omitempty"   yaml:"body_text,omitempty"`
	BodyHTML    *string        `json:"body_html,omitempty"   yaml:"body_html,omitempty"`
	FromName    *string        `json:"from_name,omitempty"   yaml:"from_name,omitempty"`
	FromEmail   *string        `json:"from_email,omitempty"  yaml:"from_email,omitempty"`
	ReplyToName *string        `json:"reply_to_name,omitempty" yaml:"reply_to_name,omitempty"`
	ReplyTo     *string        `json:"reply_to_email,omitempty" yaml:"reply_to_email,omitempty"`
	Defaults    map[string]any `json:"defaults,omitempty"    yaml:"defaults,omitempty"`
	Audit       `yaml:",inline"`

	UserCreated      *User `json:"user_created,omitempty"       yaml:"user_created,omitempty"`
	UserLastModified *User `json:"user_last_modified,omitempty" yaml:"user_last_modified,omitempty"`
}

// Device is a mobile device registered by a user.
type Device struct {
	ID       *int    `json:"id,omitempty"       yaml:"id,omitempty"`
	UserID   *int    `json:"user_id,omitempty"  yaml:"user_id,omitempty"`
	UUID     *string `json:"uuid,omitempty"     yaml:"uuid,omitempty"`
	Platform *string `json:"platform,omitempty" yaml:"platform,omitempty"`
	Version  *string `json:"version,omitempty"  yaml:"version,omitempty"`
	Model    *string `json:"model,omitempty"    yaml:"model,omitempty"`
	Extra    *string `json:"extra,omitempty"    yaml:"extra,omitempty"`
	Audit    `yaml:",inline"`

	User *User `json:"user,omitempty" yaml:"user,omitempty"`
}

// Provider is an OAuth or SSO login provider.
type Provider struct {
	ID              *int    `json:"id,omitempty"                yaml:"id,omitempty"`
	ProviderName    *string `json:"provider_name,omitempty"     yaml:"provider_name,omitempty"`
	APIName         *string `json:"api_name,omitempty"          yaml:"api_name,omitempty"`
	ConfigText      *string `json:"config_text,omitempty"       yaml:"config_text,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"         yaml:"is_active,omitempty"`
	IsSystem        *bool   `json:"is_system,omitempty"         yaml:"is_system,omitempty"`
	IsLoginProvider *bool   `json:"is_login_provider,omitempty" yaml:"is_login_provider,omitempty"`
	Audit           `yaml:",inline"`

	UserCreated      *User          `json:"user_created,omitempty"       yaml:"user_created,omitempty"`
	UserLastModified *User          `json:"user_last_modified,omitempty" yaml:"user_last_modified,omitempty"`
	ProviderUsers    []ProviderUser `json:"provider_users,omitempty"     yaml:"provider_users,omitempty"`
}

// ProviderUser links a local user to an identity at a provider.
type ProviderUser struct {
	ID             *int       `json:"id,omitempty"               yaml:"id,omitempty"`
	UserID         *int       `json:"user_id,omitempty"          yaml:"user_id,omitempty"`
	ProviderID     *int       `json:"provider_id,omitempty"      yaml:"provider_id,omitempty"`
	ProviderUserID *string    `json:"provider_user_id,omitempty" yaml:"provider_user_id,omitempty"`
	AccountType    *int       `json:"account_type,omitempty"     yaml:"account_type,omitempty"`
	AuthText       *string    `json:"auth_text,omitempty"        yaml:"auth_text,omitempty"`
	LastUseDate    *Timestamp `json:"last_use_date,omitempty"    yaml:"last_use_date,omitempty"`
	Audit          `yaml:",inline"`

	User     *User     `json:"user,omitempty"     yaml:"user,omitempty"`
	Provider *Provider `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// Codecs for every record kind served under /rest/system.
var (
	AppCodec = NewCodec[App]("app", "app",
		One("StorageService", RelatedStorageService),
		One("UserCreated", RelatedUserCreated),
		One("UserLastModified", RelatedUserLastModified),
		Many("Roles", RelatedRoles),
		Many("AppGroups", RelatedAppGroups),
		Many("Services", RelatedServices),
	)

	AppGroupCodec = NewCodec[AppGroup]("app group", "app_group",
		One("UserCreated", RelatedUserCreated),
		One("UserLastModified", RelatedUserLastModified),
		Many("AppToAppGroups", RelatedAppToAppGroups),
		Many("Apps", RelatedApps),
	)

	RoleCodec = NewCodec[Role]("role", "role",
		One("DefaultApp", RelatedDefaultApp),
		One("UserCreated", RelatedUserCreated),
		One("UserLastModified", RelatedUserLastModified),
		Many("Users", RelatedUsers),
		Many("Apps", RelatedApps),
		Many("Services", RelatedServices),
		Many("RoleServiceAccesses", RelatedRoleServiceAccesses),
		Many("RoleSystemAccesses", RelatedRoleSystemAccesses),
	)

	UserCodec = NewCodec[User]("user", "user",
		One("DefaultApp", RelatedDefaultApp),
		One("Role", RelatedRole),
		One("UserCreated", RelatedUserCreated),
		One("UserLastModified", RelatedUserLastModified),
		Many("Devices", RelatedDevices),
	)

	ServiceCodec = NewCodec[Service]("service", "service",
		One("UserCreated", RelatedUserCreated),
		One("UserLastModified", RelatedUserLastModified),
		Many("Apps", RelatedApps),
		Many("Roles", RelatedRoles),
	)

	EmailTemplateCodec = NewCodec[EmailTemplate]("email template", "email_template",
		One("UserCreated", RelatedUserCreated),
		One("UserLastModified", RelatedUserLastModified),
	)

	DeviceCodec = NewCodec[Device]("device", "device",
		One("User", RelatedUser),
	)

	ProviderCodec = NewCodec[Provider]("provider", "provider",
		One("UserCreated", RelatedUserCreated),
		One("UserLastModified", RelatedUserLastModified),
		Many("ProviderUsers", RelatedProviderUsers),
	)

	ProviderUserCodec = NewCodec[ProviderUser]("provider user", "provider_user",
		One("User", RelatedUser),
		One("Provider", RelatedProvider),
	)
)

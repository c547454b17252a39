package dfapi

// Script is a server-side event or user script.
type Script struct {
	Name         *string `json:"name,omitempty"           yaml:"name,omitempty"`
	Type         *string `json:"type,omitempty"           yaml:"type,omitempty"`
	Path         *string `json:"path,omitempty"           yaml:"path,omitempty"`
	Content      *string `json:"script,omitempty"         yaml:"script,omitempty"`
	IsUserScript *bool   `json:"is_user_script,omitempty" yaml:"is_user_script,omitempty"`
	Audit        `yaml:",inline"`
}

// EventCache is one event family with the paths that can raise it.
type EventCache struct {
	Name  *string     `json:"name,omitempty"  yaml:"name,omitempty"`
	Paths []EventPath `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// EventPath is a route that raises events, grouped by verb.
type EventPath struct {
	Path  *string     `json:"path,omitempty"  yaml:"path,omitempty"`
	Verbs []EventVerb `json:"verbs,omitempty" yaml:"verbs,omitempty"`
}

// EventVerb lists the events a verb raises and who listens to them.
type EventVerb struct {
	Type      *string  `json:"type,omitempty"      yaml:"type,omitempty"`
	Event     []string `json:"event,omitempty"     yaml:"event,omitempty"`
	Listeners []string `json:"listeners,omitempty" yaml:"listeners,omitempty"`
}

// EventRequest registers or unregisters listeners for one event.
type EventRequest struct {
	EventName string   `json:"event_name"          yaml:"event_name"`
	Listeners []string `json:"listeners,omitempty" yaml:"listeners,omitempty"`
}

// SystemConfig holds instance-wide settings. Only non-nil fields are sent on
// update.
type SystemConfig struct {
	DSPVersion              *string  `json:"dsp_version,omitempty"                yaml:"dsp_version,omitempty"`
	DBVersion               *string  `json:"db_version,omitempty"                 yaml:"db_version,omitempty"`
	InstallType             *int     `json:"install_type,omitempty"               yaml:"install_type,omitempty"`
	InstallName             *string  `json:"install_name,omitempty"               yaml:"install_name,omitempty"`
	IsHosted                *bool    `json:"is_hosted,omitempty"                  yaml:"is_hosted,omitempty"`
	IsPrivate               *bool    `json:"is_private,omitempty"                 yaml:"is_private,omitempty"`
	ServerOS                *string  `json:"server_os,omitempty"                  yaml:"server_os,omitempty"`
	AllowOpenRegistration   *bool    `json:"allow_open_registration,omitempty"    yaml:"allow_open_registration,omitempty"`
	OpenRegRoleID           *int     `json:"open_reg_role_id,omitempty"           yaml:"open_reg_role_id,omitempty"`
	OpenRegEmailServiceID   *int     `json:"open_reg_email_service_id,omitempty"  yaml:"open_reg_email_service_id,omitempty"`
	OpenRegEmailTemplateID  *int     `json:"open_reg_email_template_id,omitempty" yaml:"open_reg_email_template_id,omitempty"`
	InviteEmailServiceID    *int     `json:"invite_email_service_id,omitempty"    yaml:"invite_email_service_id,omitempty"`
	InviteEmailTemplateID   *int     `json:"invite_email_template_id,omitempty"   yaml:"invite_email_template_id,omitempty"`
	PasswordEmailServiceID  *int     `json:"password_email_service_id,omitempty"  yaml:"password_email_service_id,omitempty"`
	PasswordEmailTemplateID *int     `json:"password_email_template_id,omitempty" yaml:"password_email_template_id,omitempty"`
	AllowGuestUser          *bool    `json:"allow_guest_user,omitempty"           yaml:"allow_guest_user,omitempty"`
	GuestRoleID             *int     `json:"guest_role_id,omitempty"              yaml:"guest_role_id,omitempty"`
	EditableProfileFields   *string  `json:"editable_profile_fields,omitempty"    yaml:"editable_profile_fields,omitempty"`
	RestrictedVerbs         []string `json:"restricted_verbs,omitempty"           yaml:"restricted_verbs,omitempty"`
}

// Environment describes the server the instance runs on.
type Environment struct {
	Platform map[string]any            `json:"platform,omitempty" yaml:"platform,omitempty"`
	Server   *ServerInfo               `json:"server,omitempty"   yaml:"server,omitempty"`
	PhpInfo  map[string]PhpInfoSection `json:"php_info,omitempty" yaml:"php_info,omitempty"`
}

// ServerInfo is the operating system part of Environment.
type ServerInfo struct {
	ServerOS *string `json:"server_os,omitempty" yaml:"server_os,omitempty"`
	Release  *string `json:"release,omitempty"   yaml:"release,omitempty"`
	Version  *string `json:"version,omitempty"   yaml:"version,omitempty"`
	Host     *string `json:"host,omitempty"      yaml:"host,omitempty"`
	Machine  *string `json:"machine,omitempty"   yaml:"machine,omitempty"`
}

// PhpInfoSection is one section of the server's PHP configuration dump.
type PhpInfoSection struct {
	Info map[string]any `json:"info,omitempty" yaml:"info,omitempty"`
}

// PackageOptions controls what goes into a downloaded app package.
type PackageOptions struct {
	IncludeFiles    bool
	IncludeServices bool
	IncludeSchema   bool
}

// DefaultPackageOptions includes everything.
func DefaultPackageOptions() PackageOptions {
	return PackageOptions{
		IncludeFiles:    true,
		IncludeServices: true,
		IncludeSchema:   true,
	}
}

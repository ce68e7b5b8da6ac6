package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/muurk/routerctl/internal/router"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// Output formats accepted in Preferences.OutputFormat
const (
	FormatDetailed = "detailed"
	FormatCompact  = "compact"
	FormatJSON     = "json"
)

// Registry represents the entire user configuration file.
// It stores named router profiles and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Profiles    map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Profile holds everything needed to reach one router except the password.
type Profile struct {
	Host      string    `yaml:"host" validate:"required,hostname_rfc1123|ip"`
	Port      int       `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Username  string    `yaml:"username,omitempty"`
	SessionID string    `yaml:"session_id,omitempty" validate:"omitempty,alphanum,len=20"`
	Nickname  string    `yaml:"nickname,omitempty"`   // User-friendly name
	LastModel string    `yaml:"last_model,omitempty"` // Model reported by the router
	LastSeen  time.Time `yaml:"last_seen,omitempty"`  // Last successful connection
	// Password is NEVER stored in the config file
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultProfile string `yaml:"default_profile,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=0,max=300"`
	OutputFormat   string `yaml:"output_format" validate:"omitempty,oneof=detailed compact json"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func defaultPreferences() *Preferences {
	return &Preferences{
		TimeoutSeconds: int(router.DefaultTimeout / time.Second),
		OutputFormat:   FormatDetailed,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Profiles:    make(map[string]*Profile),
		Preferences: defaultPreferences(),
	}
}

// GetProfile retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetProfile(name string) *Profile {
	return r.Profiles[name]
}

// DefaultProfile returns the name and profile marked as default, if any.
func (r *Registry) DefaultProfile() (string, *Profile) {
	if r.Preferences == nil || r.Preferences.DefaultProfile == "" {
		return "", nil
	}
	name := r.Preferences.DefaultProfile
	return name, r.Profiles[name]
}

// ProfileNames returns the profile names in sorted order.
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetProfile validates and stores a profile. The first profile added
// becomes the default.
func (r *Registry) SetProfile(name string, p *Profile) error {
	if err := validate.Var(name, "required,max=32,excludesall= /\\"); err != nil {
		return fmt.Errorf("invalid profile name %q: must be 1-32 characters without spaces or slashes", name)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}
	r.Profiles[name] = p

	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	if r.Preferences.DefaultProfile == "" {
		r.Preferences.DefaultProfile = name
	}
	return nil
}

// RemoveProfile deletes a profile. Removing the default clears it.
func (r *Registry) RemoveProfile(name string) error {
	if _, ok := r.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	delete(r.Profiles, name)

	if r.Preferences != nil && r.Preferences.DefaultProfile == name {
		r.Preferences.DefaultProfile = ""
	}
	return nil
}

// SetDefault marks an existing profile as the default.
func (r *Registry) SetDefault(name string) error {
	if _, ok := r.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}
	if r.Preferences == nil {
		r.Preferences = defaultPreferences()
	}
	r.Preferences.DefaultProfile = name
	return nil
}

// UpdateProfileLastSeen records a successful connection to a profile's router.
func (r *Registry) UpdateProfileLastSeen(name, model string) {
	p := r.Profiles[name]
	if p == nil {
		return
	}
	p.LastSeen = time.Now()
	if model != "" {
		p.LastModel = model
	}
}

// Validate checks the profile fields
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// RouterConfig builds the client configuration for this profile.
// Empty fields are left for router.Config.WithDefaults to fill.
func (p *Profile) RouterConfig(password string, timeout time.Duration) router.Config {
	return router.Config{
		Host:      p.Host,
		Port:      p.Port,
		Username:  p.Username,
		Password:  password,
		SessionID: p.SessionID,
		Timeout:   timeout,
	}
}

// Timeout returns the preferred request timeout, or zero for the default.
func (p *Preferences) Timeout() time.Duration {
	if p == nil || p.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

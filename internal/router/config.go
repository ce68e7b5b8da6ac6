package router

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/muurk/routerctl/internal/soap"
)

const (
	// DefaultHost resolves to the router through its own DNS
	DefaultHost = "routerlogin.net"

	// DefaultPort is the SOAP port used by most firmware
	DefaultPort = 5000

	// DefaultUsername is the router's administrator account
	DefaultUsername = "admin"

	// DefaultTimeout bounds a single request/response cycle
	DefaultTimeout = 10 * time.Second
)

// Config is the connection configuration consumed by NewClient.
type Config struct {
	Host      string        `yaml:"host" validate:"required,hostname_rfc1123|ip"`
	Port      int           `yaml:"port" validate:"min=1,max=65535"`
	Username  string        `yaml:"username" validate:"required"`
	Password  string        `yaml:"-"`
	SessionID string        `yaml:"session_id" validate:"required,alphanum,len=20"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig(password string) Config {
	return Config{
		Host:      DefaultHost,
		Port:      DefaultPort,
		Username:  DefaultUsername,
		Password:  password,
		SessionID: soap.DefaultSessionID,
		Timeout:   DefaultTimeout,
	}
}

// WithDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Username == "" {
		c.Username = DefaultUsername
	}
	if c.SessionID == "" {
		c.SessionID = soap.DefaultSessionID
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their yaml names, matching the config file
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks the configuration and returns a Validation RouterError
// listing every invalid field.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return validationError("invalid router configuration", err)
	}
	return nil
}

// blockRequest is the argument set of SetBlockDevice
type blockRequest struct {
	MAC          string      `yaml:"mac" validate:"required,mac"`
	AllowOrBlock AccessState `yaml:"allow_or_block" validate:"oneof=Allow Block"`
}

// NormalizeMAC validates a hardware address and returns it in the
// upper-case, colon-separated form the router reports.
func NormalizeMAC(mac string) (string, error) {
	mac = strings.TrimSpace(mac)
	if err := validate.Var(mac, "required,mac"); err != nil {
		return "", NewValidationError(fmt.Sprintf("invalid MAC address %q", mac))
	}

	hw, err := net.ParseMAC(mac)
	if err != nil || len(hw) != 6 {
		return "", NewValidationError(fmt.Sprintf("invalid MAC address %q (expected 6 bytes)", mac))
	}

	return strings.ToUpper(hw.String()), nil
}

func validationError(prefix string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RouterError{Type: ErrTypeValidation, Message: prefix, Err: err}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), validationMessage(fe)))
	}

	return NewValidationError(fmt.Sprintf("%s: %s", prefix, strings.Join(msgs, "; ")))
}

// validationMessage returns a human-readable message for a validation error
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "max":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", e.Param())
	case "alphanum":
		return "must contain only letters and digits"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "mac":
		return "must be a valid MAC address"
	case "hostname_rfc1123|ip":
		return "must be a hostname or IP address"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

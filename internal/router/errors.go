package router

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"

	"github.com/muurk/routerctl/internal/soap"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeTransport indicates a network-level failure talking to the router
	ErrTypeTransport ErrorType = iota
	// ErrTypeTimeout indicates the router did not answer in time
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing listens on the SOAP port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the router hostname could not be resolved
	ErrTypeDNS
	// ErrTypeAuth indicates a rejected login, or a request that stayed
	// unauthenticated after the single relogin
	ErrTypeAuth
	// ErrTypeParse indicates a valid response whose content had an unexpected shape
	ErrTypeParse
	// ErrTypeValidation indicates bad client configuration or arguments
	ErrTypeValidation
)

// NetworkErrorSubtype provides more specific transport error classification
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorTimeout
	NetworkErrorConnectionRefused
	NetworkErrorDNS
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// RouterError is the error returned by every router operation.
// Auth and parse errors carry the response that caused them.
type RouterError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	Action         string              // SOAP action name, e.g. "GetAttachDevice"
	StatusCode     int                 // HTTP status of the last response (if any)
	ResponseCode   string              // <ResponseCode> of the last response (if any)
	Body           string              // Raw body of the last response (if any)
	BadCredentials bool                // Login was rejected with response code 401
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // More specific transport error type
	Host           string              // Router host (for context)
}

// Error implements the error interface
func (e *RouterError) Error() string {
	var b strings.Builder
	b.WriteString(e.Type.String())
	b.WriteString(": ")
	if e.Action != "" {
		b.WriteString(e.Action)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.StatusCode != 0 || e.ResponseCode != "" {
		fmt.Fprintf(&b, " (status %d, response code %q)", e.StatusCode, e.ResponseCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain inspection
func (e *RouterError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a more specific error type
func ClassifyNetworkError(err error, host string) *RouterError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return &RouterError{
			Type:           ErrTypeTimeout,
			Message:        "Request timed out",
			Err:            err,
			NetworkSubtype: NetworkErrorTimeout,
			Host:           host,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &RouterError{
			Type:           ErrTypeDNS,
			Message:        fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:            err,
			NetworkSubtype: NetworkErrorDNS,
			Host:           host,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &RouterError{
				Type:           ErrTypeConnectionRefused,
				Message:        "Router refused connection",
				Err:            err,
				NetworkSubtype: NetworkErrorConnectionRefused,
				Host:           host,
			}
		}
		if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
			return &RouterError{
				Type:           ErrTypeTransport,
				Message:        "Host unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorHostUnreachable,
				Host:           host,
			}
		}
		if errors.Is(opErr.Err, syscall.ENETUNREACH) {
			return &RouterError{
				Type:           ErrTypeTransport,
				Message:        "Network unreachable",
				Err:            err,
				NetworkSubtype: NetworkErrorNetworkUnreachable,
				Host:           host,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return ClassifyNetworkError(urlErr.Err, host)
	}

	return &RouterError{
		Type:           ErrTypeTransport,
		Message:        "Network error occurred",
		Err:            err,
		NetworkSubtype: NetworkErrorGeneral,
		Host:           host,
	}
}

// NewTransportError creates a transport error with automatic classification
func NewTransportError(action, message, host string, err error) *RouterError {
	classified := ClassifyNetworkError(err, host)
	if classified == nil {
		classified = &RouterError{Type: ErrTypeTransport, Host: host}
	}
	classified.Action = action
	classified.Message = message
	return classified
}

// NewAuthError creates an authentication error carrying the last response
func NewAuthError(action, message string, statusCode int, body string) *RouterError {
	return &RouterError{
		Type:         ErrTypeAuth,
		Message:      message,
		Action:       action,
		StatusCode:   statusCode,
		ResponseCode: soap.ResponseCode(body),
		Body:         body,
	}
}

// NewParseError creates a parsing error carrying the body that failed to parse
func NewParseError(action, message, body string, err error) *RouterError {
	return &RouterError{
		Type:         ErrTypeParse,
		Message:      message,
		Action:       action,
		ResponseCode: soap.ResponseCode(body),
		Body:         body,
		Err:          err,
	}
}

// NewValidationError creates a validation error
func NewValidationError(message string) *RouterError {
	return &RouterError{
		Type:    ErrTypeValidation,
		Message: message,
	}
}

func asRouterError(err error) (*RouterError, bool) {
	var rErr *RouterError
	if errors.As(err, &rErr) {
		return rErr, true
	}
	return nil, false
}

// IsTransportError checks if an error is a transport error (including timeout, connection refused, DNS)
func IsTransportError(err error) bool {
	if rErr, ok := asRouterError(err); ok {
		return rErr.Type == ErrTypeTransport ||
			rErr.Type == ErrTypeTimeout ||
			rErr.Type == ErrTypeConnectionRefused ||
			rErr.Type == ErrTypeDNS
	}
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	if rErr, ok := asRouterError(err); ok {
		return rErr.Type == ErrTypeAuth
	}
	return false
}

// IsBadCredentials checks if a login was rejected for its username or password
func IsBadCredentials(err error) bool {
	if rErr, ok := asRouterError(err); ok {
		return rErr.Type == ErrTypeAuth && rErr.BadCredentials
	}
	return false
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	if rErr, ok := asRouterError(err); ok {
		return rErr.Type == ErrTypeParse
	}
	return false
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	if rErr, ok := asRouterError(err); ok {
		return rErr.Type == ErrTypeValidation
	}
	return false
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	rErr, ok := asRouterError(err)
	if !ok {
		return "An unexpected error occurred. Please try again."
	}

	switch rErr.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The router did not respond in time.",
			"Troubleshooting:",
			"  • Check that the router is powered on",
			"  • Verify you're connected to the router's LAN",
			"  • Try increasing --timeout",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The router refused the connection.",
			"Troubleshooting:",
			"  • Verify the SOAP port (default is 5000, some models use 80)",
			"  • Check that remote management via the Genie app is not disabled",
			"  • Try rebooting the router",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the router hostname.",
			"Troubleshooting:",
			"  • routerlogin.net only resolves through the router's own DNS",
			"  • Use the router's IP address instead (e.g. --host 192.168.1.1)",
		}, "\n")

	case ErrTypeAuth:
		if rErr.BadCredentials {
			return strings.Join([]string{
				"The router rejected the username or password.",
				"Troubleshooting:",
				"  • The default username is admin",
				"  • Use the same password as the router's web interface",
				"  • Some firmware needs a router reboot after repeated failed logins",
			}, "\n")
		}
		return strings.Join([]string{
			"The router did not accept the request even after logging in again.",
			"Troubleshooting:",
			"  • Another client (e.g. the Genie app) may be holding the session",
			"  • The firmware may require a session ID issued by the router",
			"  • Run with ROUTERCTL_LOG_LEVEL=debug to see the raw response",
		}, "\n")

	case ErrTypeTransport:
		hint := []string{"Network communication failed."}

		switch rErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			hint = append(hint, "The router is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the router address is correct",
				"  • Try pinging the router: ping "+rErr.Host)

		case NetworkErrorNetworkUnreachable:
			hint = append(hint, "Your computer cannot reach the router's network.",
				"Troubleshooting:",
				"  • Check your network adapter settings",
				"  • Verify you're connected to the router's LAN or WiFi")

		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the router is powered on")
		}

		return strings.Join(hint, "\n")

	case ErrTypeParse:
		return strings.Join([]string{
			"The router's response did not have the expected format.",
			"This usually means the firmware speaks a different dialect.",
			"Troubleshooting:",
			"  • Try 'devices --structured' or plain 'devices'",
			"  • Run with ROUTERCTL_LOG_LEVEL=debug to see the raw response",
		}, "\n")

	case ErrTypeValidation:
		return "The arguments or configuration are invalid. Check the error message for details."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	rErr, ok := asRouterError(err)
	if !ok {
		return err.Error()
	}

	switch rErr.Type {
	case ErrTypeTimeout:
		return "Router not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Router refused connection - check the SOAP port"
	case ErrTypeDNS:
		return "Cannot resolve router hostname"
	case ErrTypeAuth:
		if rErr.BadCredentials {
			return "Login rejected - check username and password"
		}
		return "Router did not accept the session"
	case ErrTypeTransport:
		switch rErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Router unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check LAN connection"
		default:
			return "Network error - check connection"
		}
	case ErrTypeParse:
		return "Unexpected response from router"
	default:
		return rErr.Message
	}
}

package soap

import (
	"net/http"
	"regexp"
	"strings"
)

// SuccessMarker is the embedded code the router uses to accept a request.
const SuccessMarker = "<ResponseCode>000</ResponseCode>"

// BadCredentialsMarker is returned by Authenticate for a rejected login.
const BadCredentialsMarker = "<ResponseCode>401</ResponseCode>"

var responseCodeRegex = regexp.MustCompile(`<ResponseCode>([^<]*)</ResponseCode>`)

// RawResponse is a status code and body as received from the router.
type RawResponse struct {
	StatusCode int
	Body       string
}

// IsValid reports whether the router accepted the request: HTTP 200 and
// the success marker present in the body.
func IsValid(resp *RawResponse) bool {
	if resp == nil {
		return false
	}
	return resp.StatusCode == http.StatusOK && strings.Contains(resp.Body, SuccessMarker)
}

// IsBadCredentials reports whether a login response rejected the username or password.
func IsBadCredentials(resp *RawResponse) bool {
	return resp != nil && strings.Contains(resp.Body, BadCredentialsMarker)
}

// ResponseCode returns the contents of the first <ResponseCode> element,
// or "" if the body has none.
func ResponseCode(body string) string {
	m := responseCodeRegex.FindStringSubmatch(body)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

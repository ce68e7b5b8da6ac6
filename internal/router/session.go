package router

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/routerctl/internal/logging"
	"github.com/muurk/routerctl/internal/soap"
)

// SessionState is the authentication state of a Session
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
)

// String returns a human-readable name for the state
func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// maxLoginsPerCall bounds how many login handshakes a single Execute may
// perform, however the session state changes during the call.
const maxLoginsPerCall = 1

// Session owns the authentication state for one router and runs every
// request through the login-and-replay policy.
//
// A session becomes authenticated on a successful login and drops back to
// unauthenticated on the first response that fails validation. There is
// no expiry timer.
type Session struct {
	mu sync.Mutex

	host      string
	username  string
	password  string
	sessionID string
	soapURL   string

	transport Transport
	log       *zap.Logger

	state        SessionState
	lastResponse *soap.RawResponse
}

// NewSession creates an unauthenticated session for the given configuration.
// cfg is expected to be validated already.
func NewSession(cfg Config, soapURL string, transport Transport, log *zap.Logger) *Session {
	if log == nil {
		log = logging.GetLogger()
	}
	return &Session{
		host:      cfg.Host,
		username:  cfg.Username,
		password:  cfg.Password,
		sessionID: cfg.SessionID,
		soapURL:   soapURL,
		transport: transport,
		log:       log,
		state:     StateUnauthenticated,
	}
}

// SessionID returns the token sent with every request
func (s *Session) SessionID() string {
	return s.sessionID
}

// State returns the current authentication state
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastResponse returns a copy of the last response received, or nil
func (s *Session) LastResponse() *soap.RawResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastResponse == nil {
		return nil
	}
	resp := *s.lastResponse
	return &resp
}

// Login performs the login handshake unconditionally.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(ctx)
}

// Execute sends an action and returns its validated response.
//
// If the session is unauthenticated it logs in first. If an authenticated
// request fails validation the session is dropped, logged in again and the
// request replayed once. At most one login happens per call. Transport
// failures are returned immediately without a retry.
//
// Calls are serialized so concurrent callers never interleave a login.
func (s *Session) Execute(ctx context.Context, action, body string) (*soap.RawResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(ctx, action, body)
}

// Step is one action of a multi-request transaction
type Step struct {
	Action string
	Body   string
}

// ExecuteSteps runs steps in order under a single lock, so no other request
// on this session lands between them. Each step follows the Execute policy
// and the chain stops at the first error. Responses are returned for the
// steps that succeeded.
func (s *Session) ExecuteSteps(ctx context.Context, steps ...Step) ([]*soap.RawResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	responses := make([]*soap.RawResponse, 0, len(steps))
	for _, step := range steps {
		resp, err := s.execute(ctx, step.Action, step.Body)
		if err != nil {
			return responses, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// execute implements Execute. Caller holds s.mu.
func (s *Session) execute(ctx context.Context, action, body string) (*soap.RawResponse, error) {
	name := soap.ActionName(action)
	logins := 0

	for {
		if s.state == StateUnauthenticated {
			if err := s.login(ctx); err != nil {
				return nil, err
			}
			logins++
		}

		resp, err := s.send(ctx, action, body)
		if err != nil {
			return nil, err
		}

		if soap.IsValid(resp) {
			return resp, nil
		}

		s.setState(StateUnauthenticated, "invalid response to "+name)

		if logins >= maxLoginsPerCall {
			return nil, NewAuthError(name, "request not accepted after login", resp.StatusCode, resp.Body)
		}
	}
}

// login runs the Authenticate handshake. Caller holds s.mu.
func (s *Session) login(ctx context.Context) error {
	body := soap.LoginEnvelope(s.sessionID, s.username, s.password)

	resp, err := s.send(ctx, soap.ActionLogin, body)
	if err != nil {
		s.setState(StateUnauthenticated, "login transport failure")
		return err
	}

	if !soap.IsValid(resp) {
		s.setState(StateUnauthenticated, "login rejected")

		authErr := NewAuthError(soap.ActionName(soap.ActionLogin), "login failed", resp.StatusCode, resp.Body)
		if soap.IsBadCredentials(resp) {
			authErr.Message = "incorrect username or password, or the router needs a reboot"
			authErr.BadCredentials = true
		}
		authErr.Host = s.host
		return authErr
	}

	s.setState(StateAuthenticated, "login succeeded")
	return nil
}

// send performs a single POST. Caller holds s.mu.
func (s *Session) send(ctx context.Context, action, body string) (*soap.RawResponse, error) {
	name := soap.ActionName(action)
	logging.LogSOAPRequest(s.log, s.soapURL, name, len(body))

	resp, err := s.transport.Post(ctx, s.soapURL, action, body)
	if err != nil {
		return nil, NewTransportError(name, "SOAP request failed", s.host, err)
	}

	s.lastResponse = resp
	logging.LogSOAPResponse(s.log, name, resp.StatusCode, resp.Body)

	if !soap.IsValid(resp) {
		logging.LogInvalidResponse(s.log, name, resp.StatusCode, soap.ResponseCode(resp.Body), resp.Body)
	}

	return resp, nil
}

// setState records a transition. Caller holds s.mu.
func (s *Session) setState(to SessionState, reason string) {
	if s.state == to {
		return
	}
	logging.LogSessionTransition(s.log, s.host, s.state.String(), to.String(), reason)
	s.state = to
}

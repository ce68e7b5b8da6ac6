package router

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/routerctl/internal/soap"
)

const (
	okBody       = "<ResponseCode>000</ResponseCode>"
	rejectedBody = "<ResponseCode>401</ResponseCode>"
	staleBody    = "<ResponseCode>001</ResponseCode>"
	testSOAPURL  = "http://10.0.0.1:5000/soap/server_sa/"
	testRouterIP = "10.0.0.1"
	testUser     = "admin"
	testPassword = "p&ss<word>"
	attachOKBody = "<NewAttachDevice>1@1;10.0.0.5;Laptop;AA:BB:CC:DD:EE:01</NewAttachDevice><ResponseCode>000</ResponseCode>"
)

type scriptedReply struct {
	status int
	body   string
	err    error
}

// fakeTransport replies to POSTs per action from a script and records
// every request it sees.
type fakeTransport struct {
	mu      sync.Mutex
	replies map[string][]scriptedReply
	calls   []string
	bodies  []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(map[string][]scriptedReply)}
}

// on queues replies for action. The last reply repeats once the queue drains.
func (f *fakeTransport) on(action string, replies ...scriptedReply) *fakeTransport {
	f.replies[action] = append(f.replies[action], replies...)
	return f
}

func (f *fakeTransport) Get(ctx context.Context, url string) (*soap.RawResponse, error) {
	return nil, errors.New("GET not scripted")
}

func (f *fakeTransport) Post(ctx context.Context, url, action, body string) (*soap.RawResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, soap.ActionName(action))
	f.bodies = append(f.bodies, body)

	queue := f.replies[action]
	if len(queue) == 0 {
		return &soap.RawResponse{StatusCode: 500, Body: "unscripted action " + action}, nil
	}
	reply := queue[0]
	if len(queue) > 1 {
		f.replies[action] = queue[1:]
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return &soap.RawResponse{StatusCode: reply.status, Body: reply.body}, nil
}

func (f *fakeTransport) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func newTestSession(tr Transport) *Session {
	cfg := DefaultConfig(testPassword)
	cfg.Host = testRouterIP
	cfg.Username = testUser
	return NewSession(cfg, testSOAPURL, tr, zap.NewNop())
}

var (
	loginName  = soap.ActionName(soap.ActionLogin)
	attachName = soap.ActionName(soap.ActionGetAttachedDevices)
)

func TestSession_LogsInOnFirstRequest(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices, scriptedReply{status: 200, body: attachOKBody})
	s := newTestSession(tr)

	resp, err := s.Execute(context.Background(), soap.ActionGetAttachedDevices, soap.AttachDevicesEnvelope(s.SessionID()))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if resp.Body != attachOKBody {
		t.Errorf("Execute() body = %q", resp.Body)
	}

	if got := tr.count(loginName); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
	if got := tr.count(attachName); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
	if s.State() != StateAuthenticated {
		t.Errorf("State() = %v, want authenticated", s.State())
	}
	if !strings.Contains(tr.bodies[0], "p&amp;ss&lt;word&gt;") {
		t.Error("login envelope should carry the escaped password")
	}
}

func TestSession_ReusesAuthenticatedSession(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices, scriptedReply{status: 200, body: attachOKBody})
	s := newTestSession(tr)

	for i := 0; i < 3; i++ {
		if _, err := s.Execute(context.Background(), soap.ActionGetAttachedDevices, "x"); err != nil {
			t.Fatalf("Execute() #%d error = %v", i, err)
		}
	}

	if got := tr.count(loginName); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
	if got := tr.count(attachName); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestSession_RelogsInOnceWhenSessionGoesStale(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices,
			scriptedReply{status: 200, body: attachOKBody},
			scriptedReply{status: 200, body: staleBody},
			scriptedReply{status: 200, body: attachOKBody})
	s := newTestSession(tr)
	ctx := context.Background()

	if _, err := s.Execute(ctx, soap.ActionGetAttachedDevices, "x"); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	resp, err := s.Execute(ctx, soap.ActionGetAttachedDevices, "x")
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if resp.Body != attachOKBody {
		t.Errorf("replayed body = %q", resp.Body)
	}

	want := []string{loginName, attachName, attachName, loginName, attachName}
	if strings.Join(tr.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", tr.calls, want)
	}
}

func TestSession_GivesUpAfterOneRelogin(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices, scriptedReply{status: 200, body: staleBody})
	s := newTestSession(tr)
	ctx := context.Background()

	// Fresh session: login, request rejected, no second login
	_, err := s.Execute(ctx, soap.ActionGetAttachedDevices, "x")
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := tr.count(loginName); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
	if got := tr.count(attachName); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}

	var rErr *RouterError
	if !errors.As(err, &rErr) || rErr.Body != staleBody || rErr.ResponseCode != "001" {
		t.Errorf("auth error should carry the last response, got %+v", rErr)
	}
	if s.State() != StateUnauthenticated {
		t.Errorf("State() = %v, want unauthenticated", s.State())
	}
}

func TestSession_StaleAuthenticatedSessionGetsOneRelogin(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices,
			scriptedReply{status: 200, body: attachOKBody},
			scriptedReply{status: 200, body: staleBody})
	s := newTestSession(tr)
	ctx := context.Background()

	if _, err := s.Execute(ctx, soap.ActionGetAttachedDevices, "x"); err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}

	_, err := s.Execute(ctx, soap.ActionGetAttachedDevices, "x")
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}

	// login, ok, stale, login, stale
	if got := tr.count(loginName); got != 2 {
		t.Errorf("logins = %d, want 2", got)
	}
	if got := tr.count(attachName); got != 3 {
		t.Errorf("requests = %d, want 3", got)
	}
}

func TestSession_BadCredentials(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: rejectedBody})
	s := newTestSession(tr)

	_, err := s.Execute(context.Background(), soap.ActionGetAttachedDevices, "x")
	if !IsBadCredentials(err) {
		t.Fatalf("expected bad credentials error, got %v", err)
	}
	if got := tr.count(attachName); got != 0 {
		t.Errorf("request should not be sent after a failed login, sent %d", got)
	}
	if got := tr.count(loginName); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
}

func TestSession_LoginRejectedWithoutCode(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 500, body: "Internal Server Error"})
	s := newTestSession(tr)

	err := s.Login(context.Background())
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if IsBadCredentials(err) {
		t.Error("a 500 without response code 401 is not bad credentials")
	}
}

func TestSession_TransportErrorIsNotRetried(t *testing.T) {
	netErr := errors.New("connection reset by peer")
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices, scriptedReply{err: netErr})
	s := newTestSession(tr)

	_, err := s.Execute(context.Background(), soap.ActionGetAttachedDevices, "x")
	if !IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, netErr) {
		t.Error("transport error should wrap the cause")
	}
	if got := tr.count(loginName); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
	if got := tr.count(attachName); got != 1 {
		t.Errorf("requests = %d, want 1", got)
	}
	if s.State() != StateAuthenticated {
		t.Error("a transport failure should not drop the session")
	}
}

func TestSession_LoginTransportError(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{err: context.DeadlineExceeded})
	s := newTestSession(tr)

	_, err := s.Execute(context.Background(), soap.ActionGetTrafficMeter, "x")
	if !IsTransportError(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if len(tr.calls) != 1 {
		t.Errorf("calls = %v, want only the login", tr.calls)
	}
}

func TestSession_LastResponse(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices, scriptedReply{status: 200, body: attachOKBody})
	s := newTestSession(tr)

	if s.LastResponse() != nil {
		t.Error("LastResponse() should be nil before any request")
	}

	if _, err := s.Execute(context.Background(), soap.ActionGetAttachedDevices, "x"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	last := s.LastResponse()
	if last == nil || last.Body != attachOKBody {
		t.Fatalf("LastResponse() = %+v", last)
	}
	last.Body = "mutated"
	if s.LastResponse().Body != attachOKBody {
		t.Error("LastResponse() should return a copy")
	}
}

func TestSession_ConcurrentCallersShareOneLogin(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices, scriptedReply{status: 200, body: attachOKBody})
	s := newTestSession(tr)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Execute(context.Background(), soap.ActionGetAttachedDevices, "x"); err != nil {
				t.Errorf("Execute() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if got := tr.count(loginName); got != 1 {
		t.Errorf("logins = %d, want 1", got)
	}
	if got := tr.count(attachName); got != 8 {
		t.Errorf("requests = %d, want 8", got)
	}
}

// gatedTransport holds the first request for one action until released
type gatedTransport struct {
	*fakeTransport
	action  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedTransport) Post(ctx context.Context, url, action, body string) (*soap.RawResponse, error) {
	if action == g.action {
		g.once.Do(func() {
			close(g.entered)
			<-g.release
		})
	}
	return g.fakeTransport.Post(ctx, url, action, body)
}

func blockSteps(sid string) []Step {
	return []Step{
		{Action: soap.ActionConfigurationStarted, Body: soap.ConfigurationStartedEnvelope(sid)},
		{Action: soap.ActionSetBlockDevice, Body: soap.SetBlockDeviceEnvelope(sid, "AA:BB:CC:DD:EE:01", "Block")},
		{Action: soap.ActionConfigurationFinished, Body: soap.ConfigurationFinishedEnvelope(sid)},
	}
}

func TestSession_ExecuteStepsStopsAtFirstFailure(t *testing.T) {
	tr := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionConfigurationStarted, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionSetBlockDevice, scriptedReply{status: 500, body: "<ResponseCode>501</ResponseCode>"})
	s := newTestSession(tr)

	done, err := s.ExecuteSteps(context.Background(), blockSteps(s.SessionID())...)
	if !IsAuthError(err) {
		t.Fatalf("ExecuteSteps() error = %v, want auth error", err)
	}
	if len(done) != 1 {
		t.Errorf("completed steps = %d, want 1", len(done))
	}
	if n := tr.count(soap.ActionName(soap.ActionConfigurationFinished)); n != 0 {
		t.Errorf("ConfigurationFinished sent %d times after a failed step", n)
	}
}

func TestSession_ExecuteStepsIsNotInterleaved(t *testing.T) {
	fake := newFakeTransport().
		on(soap.ActionLogin, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionConfigurationStarted, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionSetBlockDevice, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionConfigurationFinished, scriptedReply{status: 200, body: okBody}).
		on(soap.ActionGetAttachedDevices, scriptedReply{status: 200, body: attachOKBody})
	tr := &gatedTransport{
		fakeTransport: fake,
		action:        soap.ActionConfigurationStarted,
		entered:       make(chan struct{}),
		release:       make(chan struct{}),
	}
	s := newTestSession(tr)
	ctx := context.Background()

	stepsErr := make(chan error, 1)
	go func() {
		_, err := s.ExecuteSteps(ctx, blockSteps(s.SessionID())...)
		stepsErr <- err
	}()
	<-tr.entered

	attachErr := make(chan error, 1)
	go func() {
		_, err := s.Execute(ctx, soap.ActionGetAttachedDevices, soap.AttachDevicesEnvelope(s.SessionID()))
		attachErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	close(tr.release)

	if err := <-stepsErr; err != nil {
		t.Fatalf("ExecuteSteps() error = %v", err)
	}
	if err := <-attachErr; err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	want := []string{loginName, "ConfigurationStarted", "SetBlockDeviceByMAC", "ConfigurationFinished", attachName}
	if strings.Join(fake.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", fake.calls, want)
	}
}

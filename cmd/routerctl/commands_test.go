package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/muurk/routerctl/internal/config"
	"github.com/muurk/routerctl/internal/router"
	"github.com/muurk/routerctl/internal/soap"
)

const okResponse = "<ResponseCode>000</ResponseCode>"

// newRouterServer answers every SOAP action from replies and records the
// actions it saw.
func newRouterServer(t *testing.T, replies map[string]string) (host, port string, actions func() []string) {
	t.Helper()

	var (
		mu   sync.Mutex
		seen []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := r.Header.Get("SOAPAction")
		_, _ = io.Copy(io.Discard, r.Body)

		mu.Lock()
		seen = append(seen, soap.ActionName(action))
		mu.Unlock()

		body, ok := replies[action]
		if !ok {
			body = okResponse
		}
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	host, port, err := net.SplitHostPort(strings.TrimPrefix(srv.URL, "http://"))
	if err != nil {
		t.Fatalf("failed to split server address: %v", err)
	}

	return host, port, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), seen...)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

// runCLIWithInput runs the root command with stdin set to input
func runCLIWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	// flag variables outlive a single Execute
	assumeYes = false

	t.Setenv(config.ConfigPathEnv, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(PasswordEnvVar, "password")
	if _, err := config.ReloadRegistry(); err != nil {
		t.Fatalf("ReloadRegistry() error = %v", err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDevicesJSON(t *testing.T) {
	host, port, actions := newRouterServer(t, map[string]string{
		soap.ActionGetAttachedDevices: "<NewAttachDevice>2@0;10.0.0.5;Laptop;AA:BB:CC:DD:EE:01;wired;0;0;Allow</NewAttachDevice>" + okResponse,
	})

	out, err := runCLI(t, "devices", "--host", host, "--port", port, "--format", "json")
	if err != nil {
		t.Fatalf("devices error = %v", err)
	}

	var devices []router.Device
	if err := json.Unmarshal([]byte(out), &devices); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(devices) != 1 || devices[0].Name != "Laptop" || devices[0].AllowOrBlock != router.AccessAllow {
		t.Errorf("devices = %+v", devices)
	}
	if !strings.Contains(out, `"Linkspeed"`) {
		t.Errorf("JSON should use the router's field names:\n%s", out)
	}

	got := strings.Join(actions(), ",")
	if got != "Authenticate,GetAttachDevice" {
		t.Errorf("actions = %s", got)
	}
}

func TestTrafficCompact(t *testing.T) {
	host, port, _ := newRouterServer(t, map[string]string{
		soap.ActionGetTrafficMeter: "<NewTodayUpload>12.3</NewTodayUpload><NewTodayDownload>45.6</NewTodayDownload>" + okResponse,
	})

	out, err := runCLI(t, "traffic", "--host", host, "--port", port, "--format", "compact")
	if err != nil {
		t.Fatalf("traffic error = %v", err)
	}
	if strings.TrimSpace(out) != "Today: 12.30 MB up, 45.60 MB down" {
		t.Errorf("output = %q", out)
	}
}

func TestBlockWithYes(t *testing.T) {
	host, port, actions := newRouterServer(t, nil)

	_, err := runCLI(t, "block", "aa-bb-cc-dd-ee-01", "--yes", "--host", host, "--port", port, "--format", "compact")
	if err != nil {
		t.Fatalf("block error = %v", err)
	}

	got := strings.Join(actions(), ",")
	if got != "Authenticate,ConfigurationStarted,SetBlockDeviceByMAC,ConfigurationFinished" {
		t.Errorf("actions = %s", got)
	}
}

func TestBlockConfirmsOnInput(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		actions string
	}{
		{"yes", "y\n", "Authenticate,ConfigurationStarted,SetBlockDeviceByMAC,ConfigurationFinished"},
		{"no", "n\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, actions := newRouterServer(t, nil)

			out, err := runCLIWithInput(t, tt.answer, "block", "AA:BB:CC:DD:EE:01", "--host", host, "--port", port, "--format", "compact")
			if err != nil {
				t.Fatalf("block error = %v", err)
			}
			if !strings.Contains(out, "Block this device?") {
				t.Errorf("expected confirmation question, got %q", out)
			}
			if got := strings.Join(actions(), ","); got != tt.actions {
				t.Errorf("actions = %s, want %s", got, tt.actions)
			}
		})
	}
}

func TestAllowAcceptsYes(t *testing.T) {
	host, port, actions := newRouterServer(t, nil)

	_, err := runCLI(t, "allow", "AA:BB:CC:DD:EE:01", "--yes", "--host", host, "--port", port, "--format", "compact")
	if err != nil {
		t.Fatalf("allow --yes error = %v", err)
	}

	got := strings.Join(actions(), ",")
	if got != "Authenticate,ConfigurationStarted,SetBlockDeviceByMAC,ConfigurationFinished" {
		t.Errorf("actions = %s", got)
	}
}

func TestAllowRejectsBadMAC(t *testing.T) {
	host, port, actions := newRouterServer(t, nil)

	_, err := runCLI(t, "allow", "not-a-mac", "--host", host, "--port", port)
	if !router.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(actions()) != 0 {
		t.Error("nothing should be sent for an invalid MAC")
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "routerctl ") {
		t.Errorf("output = %q", out)
	}
}

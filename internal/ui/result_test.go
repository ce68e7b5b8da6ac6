package ui

import (
	"errors"
	"strings"
	"testing"
)

func TestSuccessResultRender(t *testing.T) {
	out := NewSuccessResult("Device blocked",
		Detail{Key: "MAC", Value: "AA:BB:CC:DD:EE:01"},
		Detail{Key: "Router", Value: "routerlogin.net"},
	).SetWidth(80).Render()

	for _, want := range []string{"SUCCESS", "Device blocked", "AA:BB:CC:DD:EE:01", "routerlogin.net"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() should contain %q", want)
		}
	}

	// Details keep their order
	if strings.Index(out, "MAC:") > strings.Index(out, "Router:") {
		t.Error("details should render in the order given")
	}
}

func TestFailureResultTroubleshooting(t *testing.T) {
	hint := "The router did not respond in time.\nTroubleshooting:\n  • Check that the router is powered on\n  • Try increasing --timeout"

	r := NewFailureResult("Could not list devices", errors.New("timeout"), hint)
	if len(r.Troubleshooting) != 3 {
		t.Fatalf("Troubleshooting = %q, want 3 lines", r.Troubleshooting)
	}
	if r.Troubleshooting[1] != "Check that the router is powered on" {
		t.Errorf("bullet should be stripped, got %q", r.Troubleshooting[1])
	}

	out := r.SetWidth(80).Render()
	for _, want := range []string{"FAILED", "Error: timeout", "Troubleshooting:", "--timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() should contain %q", want)
		}
	}
}

func TestWarningResultMinimumWidth(t *testing.T) {
	out := NewWarningResult("Block device").SetWidth(10).Render()
	if !strings.Contains(out, "WARNING") {
		t.Error("Render() should contain WARNING")
	}
}

func TestHeaderRender(t *testing.T) {
	out := NewHeader("Attached devices", "routerctl devices",
		Detail{Key: "Router", Value: "10.0.0.1:5000"}).SetWidth(80).Render()

	for _, want := range []string{"ATTACHED DEVICES", "routerctl devices", "Router:", "10.0.0.1:5000"} {
		if !strings.Contains(out, want) {
			t.Errorf("Render() should contain %q", want)
		}
	}
}

package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be a no-op when no level is configured")
	}
}

func TestInitialize_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "warn")

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	defer SetLogger(nil)

	core := GetLogger().Core()
	if core.Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !core.Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled at warn level")
	}
}

func TestGetLogger_Fallback(t *testing.T) {
	SetLogger(nil)
	if GetLogger() == nil {
		t.Fatal("GetLogger() returned nil")
	}
}

func TestLogInvalidResponse(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core)

	LogInvalidResponse(l, "GetAttachDevice", 500, "401", "<body>\x00</body>")

	entries := logs.FilterMessage("Invalid router response").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	fields := entries[0].ContextMap()
	if fields["action"] != "GetAttachDevice" {
		t.Errorf("action = %v, want GetAttachDevice", fields["action"])
	}
	if fields["status_code"] != int64(500) {
		t.Errorf("status_code = %v, want 500", fields["status_code"])
	}
	if fields["body"] != "<body>.</body>" {
		t.Errorf("body = %q, want non-printable bytes replaced", fields["body"])
	}
}

func TestLogSOAPResponse_BodyOnlyAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	LogSOAPResponse(zap.New(core), "Authenticate", 200, "<ok/>")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if _, ok := entries[0].ContextMap()["body"]; !ok {
		t.Error("debug logger should include the response body")
	}
}

func TestPrintableBody(t *testing.T) {
	if got := PrintableBody(""); got != "" {
		t.Errorf("PrintableBody(\"\") = %q, want empty", got)
	}

	long := strings.Repeat("a", maxBodyLog+10)
	got := PrintableBody(long)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long body should be truncated with ellipsis")
	}
	if len(got) != maxBodyLog+3 {
		t.Errorf("len(PrintableBody(long)) = %d, want %d", len(got), maxBodyLog+3)
	}

	if got := PrintableBody("a\r\nb"); got != "a..b" {
		t.Errorf("PrintableBody() = %q, want %q", got, "a..b")
	}
}

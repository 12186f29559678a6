package logx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerRedactsSecretsAndFingerprintsIDs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	log.Info("login", "chat_id", int64(42), "email", "ada@example.com", "password", "s3cret", "kind", "login")

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if got, _ := payload["password"].(string); got != redacted {
		t.Fatalf("password not redacted: %q", got)
	}
	if _, ok := payload["email"]; ok {
		t.Fatal("plain email must not be logged")
	}
	if got, _ := payload["email_fp"].(string); !strings.HasPrefix(got, "fp_") {
		t.Fatalf("email_fp = %q", got)
	}
	if got, _ := payload["chat_id_fp"].(string); got != Fingerprint("42") {
		t.Fatalf("chat_id_fp = %q", got)
	}
	if got, _ := payload["kind"].(string); got != "login" {
		t.Fatalf("kind changed: %q", got)
	}
}

func TestWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").With("bot_token", "123:abc")
	log.Debug("x", slog.Group("req", "authorization", "Bearer z", "path", "/login"))

	out := buf.String()
	if strings.Contains(out, "123:abc") || strings.Contains(out, "Bearer z") {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, `"path":"/login"`) {
		t.Fatalf("group attr lost: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("WARN") != slog.LevelWarn || ParseLevel("") != slog.LevelInfo || ParseLevel("debug") != slog.LevelDebug {
		t.Fatal("unexpected level mapping")
	}
}

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func captureLogOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	original := globalLogger
	t.Cleanup(func() {
		globalLogger = original
	})

	var buf bytes.Buffer
	globalLogger = New(&buf)
	return &buf
}

func decodeLogEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()

	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed decoding log entry: %v raw=%q", err, buf.String())
	}
	return entry
}

func TestInfoEmitsEntryWithoutUser(t *testing.T) {
	buf := captureLogOutput(t)

	Info("server_starting", map[string]interface{}{"port": "8080"})

	entry := decodeLogEntry(t, buf)
	if entry.Level != LevelInfo || entry.Action != "server_starting" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.UserID != nil {
		t.Fatalf("expected no user attribution, got %v", *entry.UserID)
	}
	if entry.Details["port"] != "8080" {
		t.Fatalf("expected port detail, got %v", entry.Details)
	}
}

func TestWarnWithUserAttributesEntry(t *testing.T) {
	buf := captureLogOutput(t)

	WarnWithUser("user-123", "login_failed_invalid_password", map[string]interface{}{"ip": "10.0.0.1"})

	entry := decodeLogEntry(t, buf)
	if entry.Level != LevelWarn {
		t.Fatalf("expected warn level, got %s", entry.Level)
	}
	if entry.UserID == nil || *entry.UserID != "user-123" {
		t.Fatalf("expected user_id user-123, got %v", entry.UserID)
	}
	if entry.Action != "login_failed_invalid_password" {
		t.Fatalf("unexpected action %q", entry.Action)
	}
}

func TestErrorWithUserCarriesErrorMessage(t *testing.T) {
	buf := captureLogOutput(t)

	ErrorWithUser("user-123", "image_upload_failed", errors.New("disk full"), nil)

	entry := decodeLogEntry(t, buf)
	if entry.Level != LevelError {
		t.Fatalf("expected error level, got %s", entry.Level)
	}
	if entry.Error != "disk full" {
		t.Fatalf("expected error message, got %q", entry.Error)
	}
	if entry.UserID == nil || *entry.UserID != "user-123" {
		t.Fatalf("expected user attribution, got %v", entry.UserID)
	}
}

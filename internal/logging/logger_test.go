package logging

import (
	"bytes"
	"testing"
)

func TestOrNopHandlesTypedNilPointers(t *testing.T) {
	var typed *slogLogger
	var logger Logger = typed
	if !IsNil(logger) {
		t.Fatalf("expected typed nil pointer to be detected")
	}
	safe := OrNop(logger)
	if IsNil(safe) {
		t.Fatalf("expected OrNop to return a usable logger")
	}
	safe.Info("hello %s", "world") // should not panic
}

func TestComponentLoggerFormatsMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewComponentLogger("test", Config{Level: "info", Format: "text", Output: buf})

	logger.Info("hello %s", "world")

	if got := buf.String(); got == "" {
		t.Fatalf("expected log output")
	}
	if want := "hello world"; !bytes.Contains(buf.Bytes(), []byte(want)) {
		t.Fatalf("expected %q in output, got %q", want, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("component=test")) {
		t.Fatalf("expected component field in output, got %q", buf.String())
	}
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := New(Config{Level: "info", Format: "text", Output: buf})

	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug output to be suppressed, got %q", buf.String())
	}
}

func TestRedactEmail(t *testing.T) {
	cases := map[string]string{
		"alice@example.com": "***@example.com",
		"no-at-sign":        "***",
		"":                  "***",
	}
	for in, want := range cases {
		if got := RedactEmail(in); got != want {
			t.Fatalf("RedactEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

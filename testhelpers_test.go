package main

import (
	"io"
	"log/slog"
	"os"
	"testing"
)

const testSigningKey = "0123456789abcdef0123456789abcdef"

func writeFile(path string, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o600)
}

// unsetEnv removes key for the rest of the test; t.Setenv beforehand makes
// sure the original value is restored afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	if unsetError := os.Unsetenv(key); unsetError != nil {
		t.Fatalf("os.Unsetenv: %v", unsetError)
	}
}

func discardLogger() *slog.Logger {
	return newLogger(io.Discard, slog.LevelError)
}

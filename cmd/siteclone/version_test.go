package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := out.String()
	if !strings.HasPrefix(got, "siteclone ") {
		t.Errorf("output = %q, want siteclone prefix", got)
	}
	if !strings.Contains(got, "commit") || !strings.Contains(got, "built") {
		t.Errorf("output = %q, want commit and build date", got)
	}
}

func TestGetVersion(t *testing.T) {
	if got := getVersion(); got == "" {
		t.Error("getVersion() should never be empty")
	}
}

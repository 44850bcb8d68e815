package notify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestHookRunnerPassesPayload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on Windows")
	}

	dir := t.TempDir()
	outputFile := filepath.Join(dir, "output.json")
	scriptPath := filepath.Join(dir, "hook.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\ncat > "+outputFile+"\n"), 0755); err != nil {
		t.Fatal(err)
	}

	payload := HookPayload{
		EventID:   "e1",
		Event:     "slicingProfilesChanged",
		Action:    "deleted",
		Key:       "pla",
		Host:      "http://octopi.local",
		Timestamp: "2026-01-01T00:00:00Z",
	}
	if err := NewHookRunner(scriptPath).Execute(context.Background(), payload); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatal(err)
	}
	var received HookPayload
	if err := json.Unmarshal(data, &received); err != nil {
		t.Fatal(err)
	}
	if received != payload {
		t.Errorf("received %+v, want %+v", received, payload)
	}
}

func TestHookRunnerFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on Windows")
	}

	scriptPath := filepath.Join(t.TempDir(), "fail.sh")
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\necho boom\nexit 3\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := NewHookRunner(scriptPath).Execute(context.Background(), HookPayload{}); err == nil {
		t.Error("expected error from failing hook")
	}
}

func TestHookRunnerMissingScript(t *testing.T) {
	r := NewHookRunner(filepath.Join(t.TempDir(), "missing.sh"))
	if err := r.Execute(context.Background(), HookPayload{}); err == nil {
		t.Error("expected error for missing script")
	}
}

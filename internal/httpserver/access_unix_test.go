//go:build !windows

package httpserver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTestPathChecksAccessForCurrentUser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slic3r")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// Executable for group and others, not for the owning user.
	if err := os.Chmod(path, 0655); err != nil {
		t.Fatal(err)
	}

	got := testPath(UtilTestRequest{Command: "path", Path: path, CheckType: "file", CheckAccess: "x"})
	if !got.Exists || !got.TypeOK {
		t.Fatalf("Expected existing file, got %+v", got)
	}
	if os.Geteuid() == 0 {
		// root may execute anything with an x bit set.
		if !got.Access {
			t.Errorf("Expected access for root, got %+v", got)
		}
		return
	}
	if got.Access || got.Result {
		t.Errorf("Expected no execute access for the owner, got %+v", got)
	}
}

func TestTestPathNoExecuteBits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.ini")
	if err := os.WriteFile(path, []byte("layer_height = 0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := testPath(UtilTestRequest{Command: "path", Path: path, CheckType: "file", CheckAccess: "x"})
	if got.Access || got.Result {
		t.Errorf("Expected no execute access, got %+v", got)
	}

	got = testPath(UtilTestRequest{Command: "path", Path: path, CheckType: "file", CheckAccess: "r"})
	if !got.Access || !got.Result {
		t.Errorf("Expected read access, got %+v", got)
	}
}

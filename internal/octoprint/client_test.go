package octoprint_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"preprint/internal/httpserver"
	"preprint/internal/octoprint"
	"preprint/internal/store"
)

func startServer(t *testing.T) (*octoprint.Client, *store.Store) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	ts := httptest.NewServer(httpserver.NewHTTPServer(st, []string{"secret"}, "test"))
	t.Cleanup(ts.Close)

	c := octoprint.NewClient(ts.URL, "secret")
	return c, st
}

func strPtr(s string) *string { return &s }

func TestClientProfileRoundTrip(t *testing.T) {
	c, st := startServer(t)
	ctx := context.Background()

	rec, err := c.ImportProfile(ctx, octoprint.ImportRequest{
		File:           strings.NewReader("layer_height = 0.2\n"),
		FileName:       "petg.ini",
		AllowOverwrite: true,
		Name:           strPtr("petg_custom"),
		DisplayName:    strPtr("PETG custom"),
	})
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if rec.Key != "petg_custom" {
		t.Errorf("Expected key 'petg_custom', got %q", rec.Key)
	}

	list, err := c.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	got, ok := list["petg_custom"]
	if !ok {
		t.Fatalf("Expected petg_custom in %v", list)
	}
	if got.DisplayName != "PETG custom" {
		t.Errorf("Expected display name 'PETG custom', got %q", got.DisplayName)
	}

	yes := true
	if err := c.PatchProfile(ctx, got.Resource, octoprint.ProfilePatch{Default: &yes}); err != nil {
		t.Fatalf("PatchProfile: %v", err)
	}
	if st.Default() != "petg_custom" {
		t.Errorf("Expected default 'petg_custom', got %q", st.Default())
	}

	if err := c.DeleteProfile(ctx, got.Resource); err != nil {
		t.Fatalf("DeleteProfile: %v", err)
	}
	list, err = c.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected empty list, got %v", list)
	}
}

func TestClientAPIError(t *testing.T) {
	c, _ := startServer(t)

	err := c.DeleteProfile(context.Background(), "/api/slicing/preprintservice/profiles/missing")
	var apiErr *octoprint.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Error("Expected error message from response body")
	}
}

func TestClientUnauthorized(t *testing.T) {
	c, _ := startServer(t)
	c.APIKey = "wrong"

	_, err := c.ListProfiles(context.Background())
	var apiErr *octoprint.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 APIError, got %v", err)
	}
}

func TestClientTestExecutable(t *testing.T) {
	c, _ := startServer(t)
	exe := filepath.Join(t.TempDir(), "engine")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	res, err := c.TestExecutable(context.Background(), exe)
	if err != nil {
		t.Fatalf("TestExecutable: %v", err)
	}
	if !res.Result || !res.Exists || !res.TypeOK || !res.Access {
		t.Errorf("Expected all checks to pass, got %+v", res)
	}

	res, err = c.TestExecutable(context.Background(), exe+".missing")
	if err != nil {
		t.Fatalf("TestExecutable: %v", err)
	}
	if res.Exists || res.Result {
		t.Errorf("Expected missing path, got %+v", res)
	}
}

func TestResolveURL(t *testing.T) {
	c := octoprint.NewClient("http://octopi.local/prefix/", "")

	tests := []struct {
		ref      string
		expected string
	}{
		{"/api/util/test", "http://octopi.local/prefix/api/util/test"},
		{"api/util/test", "http://octopi.local/prefix/api/util/test"},
		{"http://other:5000/api/x", "http://other:5000/api/x"},
	}
	for _, tt := range tests {
		got, err := c.ResolveURL(tt.ref)
		if err != nil {
			t.Errorf("ResolveURL(%q): %v", tt.ref, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.ref, got, tt.expected)
		}
	}
}

func TestEventsURL(t *testing.T) {
	c := octoprint.NewClient("https://octopi.local", "")
	got, err := c.EventsURL()
	if err != nil {
		t.Fatal(err)
	}
	if got != "wss://octopi.local/api/events" {
		t.Errorf("Expected wss URL, got %q", got)
	}
}

func TestNewClientLogsOnlyWithLogger(t *testing.T) {
	c, _ := startServer(t)
	if c.Logger != nil {
		t.Fatalf("Logger = %v, want nil by default", c.Logger)
	}
	if _, err := c.ListProfiles(context.Background()); err != nil {
		t.Fatalf("ListProfiles without logger: %v", err)
	}

	var buf bytes.Buffer
	c.Logger = log.New(&buf, "", 0)
	if _, err := c.ListProfiles(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[octoprint] GET /api/slicing/preprintservice/profiles") {
		t.Errorf("log = %q", buf.String())
	}
}

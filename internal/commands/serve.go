package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"preprint/internal/config"
	"preprint/internal/httpserver"
	"preprint/internal/store"
	"preprint/internal/ui"
)

// RunServe is the entry point for `preprint serve`. It serves the profile
// API from a local folder until interrupted.
func RunServe(addr, dir string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		ui.ShowError("Failed to load config", err)
		os.Exit(1)
	}
	if len(cfg.Tokens) == 0 {
		token, err := generateToken()
		if err != nil {
			ui.ShowError("Failed to generate token", err)
			os.Exit(1)
		}
		cfg.Tokens = []string{token}
		saveErr := config.UpdateConfig(func(stored *config.Config) error {
			stored.Tokens = cfg.Tokens
			if stored.APIKey == "" {
				stored.APIKey = token
			}
			return nil
		})
		if saveErr != nil {
			fmt.Fprintf(os.Stderr, "[warn] could not save generated token: %v\n", saveErr)
		}
		fmt.Printf("Generated API key: %s\n", token)
		fmt.Printf("(saved to %s)\n", config.ConfigPath)
	}

	if addr == "" {
		addr = cfg.Bind
	}
	if dir == "" {
		dir = cfg.ProfileDir
	}

	st, err := store.Open(dir)
	if err != nil {
		ui.ShowError("Failed to open profile folder", err)
		os.Exit(1)
	}
	if changed, err := st.SeedDefault(cfg.DefaultProfile); err != nil {
		ui.ShowWarning("defaultProfile %q not applied: %v", cfg.DefaultProfile, err)
	} else if changed {
		ui.ShowInfo("Default profile set to %s", cfg.DefaultProfile)
	}
	if !ui.CanWriteTo(st.Dir()) {
		ui.ShowWarning("Profile folder %s is not writable, imports will fail", st.Dir())
	}

	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)

	server := httpserver.NewHTTPServer(st, cfg.Tokens, Version)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(addr)
	}()
	fmt.Printf("Profile service listening on %s\n", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			ui.ShowError("Server stopped", err)
			os.Exit(1)
		}
	case <-sigCh:
		fmt.Printf("\nShutting down...\n")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "[http] shutdown: %v\n", err)
		}
	}
}

// generateToken returns a random 32-character hex token.
func generateToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

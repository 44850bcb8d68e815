package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const hookTimeout = 30 * time.Second

// HookPayload is the JSON structure passed to hook scripts via stdin.
type HookPayload struct {
	EventID   string `json:"eventId"`
	Event     string `json:"event"`
	Action    string `json:"action,omitempty"`
	Key       string `json:"key,omitempty"`
	Host      string `json:"host"`
	Timestamp string `json:"timestamp"`
}

// HookRunner executes a script with a JSON payload on stdin.
type HookRunner struct {
	ScriptPath string
}

func NewHookRunner(scriptPath string) *HookRunner {
	return &HookRunner{ScriptPath: scriptPath}
}

// Execute runs the script, killing it after hookTimeout.
func (h *HookRunner) Execute(ctx context.Context, payload HookPayload) error {
	ctx, cancel := context.WithTimeout(ctx, hookTimeout)
	defer cancel()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("hook marshal payload: %w", err)
	}

	cmd := exec.CommandContext(ctx, h.ScriptPath)
	cmd.Stdin = strings.NewReader(string(data))

	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("hook timed out after %s: %s", hookTimeout, h.ScriptPath)
	}
	if err != nil {
		return fmt.Errorf("hook %s failed: %w (output: %s)", h.ScriptPath, err, strings.TrimSpace(string(output)))
	}
	return nil
}

//go:build linux

package notify

import (
	"fmt"
	"os/exec"
)

type notifySend struct {
	path string
}

func newPlatformNotifier() Notifier {
	path, _ := exec.LookPath("notify-send")
	return &notifySend{path: path}
}

// Send is a no-op when notify-send is not installed.
func (l *notifySend) Send(n Notification) error {
	if l.path == "" {
		return nil
	}
	args := []string{"--app-name=preprint", "--icon=printer"}
	if n.Sound {
		args = append(args, "--hint=string:sound-name:message-new-instant")
	}
	args = append(args, n.Title, n.Message)
	if out, err := exec.Command(l.path, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send: %w (%s)", err, out)
	}
	return nil
}

func (l *notifySend) Name() string { return "notify-send" }

//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
)

type osascript struct{}

func newPlatformNotifier() Notifier {
	return osascript{}
}

func (osascript) Send(n Notification) error {
	script := fmt.Sprintf(`display notification %q with title "preprint" subtitle %q`, n.Message, n.Title)
	if n.Sound {
		script += ` sound name "default"`
	}
	return exec.Command("osascript", "-e", script).Run()
}

func (osascript) Name() string { return "osascript" }

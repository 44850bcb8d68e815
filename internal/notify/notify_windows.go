//go:build windows

package notify

import (
	"fmt"
	"os/exec"
)

const toastScript = `
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] > $null
$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
$textNodes = $template.GetElementsByTagName("text")
$textNodes.Item(0).AppendChild($template.CreateTextNode(%q)) > $null
$textNodes.Item(1).AppendChild($template.CreateTextNode(%q)) > $null
$toast = [Windows.UI.Notifications.ToastNotification]::new($template)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("preprint").Show($toast)
`

type toastNotifier struct{}

func newPlatformNotifier() Notifier {
	return toastNotifier{}
}

func (toastNotifier) Send(n Notification) error {
	script := fmt.Sprintf(toastScript, n.Title, n.Message)
	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("windows toast: %w", err)
	}
	return nil
}

func (toastNotifier) Name() string { return "toast" }

package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"preprint/internal/octoprint"
)

// Notification represents a notification to be sent.
type Notification struct {
	Title   string
	Message string
	Sound   bool
}

// Notifier sends notifications.
type Notifier interface {
	Send(n Notification) error
	Name() string
}

// NewDesktopNotifier returns a platform-specific desktop notification sender.
func NewDesktopNotifier() Notifier {
	return newPlatformNotifier()
}

// MultiNotifier fans a notification out to several notifiers.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(ns ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: ns}
}

// Send tries every notifier and returns the first error.
func (m *MultiNotifier) Send(n Notification) error {
	var firstErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", notifier.Name(), err)
		}
	}
	return firstErr
}

func (m *MultiNotifier) Name() string {
	names := make([]string, len(m.notifiers))
	for i, n := range m.notifiers {
		names[i] = n.Name()
	}
	return "multi(" + strings.Join(names, ",") + ")"
}

// ProfileChange is the payload of a slicingProfilesChanged event.
type ProfileChange struct {
	Action string `json:"action"`
	Key    string `json:"key"`
}

// ParseProfileChange decodes the payload of a profile event. ok is false for
// other event types. An empty or malformed payload yields a zero change.
func ParseProfileChange(ev octoprint.Event) (ProfileChange, bool) {
	if ev.Type != octoprint.EventSlicingProfilesChanged {
		return ProfileChange{}, false
	}
	var c ProfileChange
	if len(ev.Payload) > 0 {
		_ = json.Unmarshal(ev.Payload, &c)
	}
	return c, true
}

// FromProfileChange renders a change for humans.
func FromProfileChange(c ProfileChange) Notification {
	n := Notification{Title: "Slicing profiles changed"}
	switch c.Action {
	case "imported":
		n.Message = fmt.Sprintf("Profile %s was imported", c.Key)
	case "deleted":
		n.Message = fmt.Sprintf("Profile %s was removed", c.Key)
	case "updated":
		n.Message = fmt.Sprintf("Profile %s was updated", c.Key)
	default:
		n.Message = "The profile list was modified"
	}
	return n
}

package tui

import (
	"context"
	"sync"
	"sync/atomic"

	"preprint/internal/octoprint"
)

// dialogState is the import dialog handle given to the panel. The panel hides
// it after a successful import; the model reads it on every update.
type dialogState struct {
	visible atomic.Bool
}

func (d *dialogState) Show()           { d.visible.Store(true) }
func (d *dialogState) Hide()           { d.visible.Store(false) }
func (d *dialogState) IsVisible() bool { return d.visible.Load() }

type profileLister interface {
	ListProfiles(ctx context.Context) (map[string]octoprint.ProfileRecord, error)
}

// defaultTracker is the header's view of the slicing profiles: it only shows
// which profile the slicer will use by default. It reloads whenever the panel
// changes the profile set.
type defaultTracker struct {
	api profileLister

	mu    sync.Mutex
	name  string
	count int
}

func (t *defaultTracker) RequestData(ctx context.Context) error {
	records, err := t.api.ListProfiles(ctx)
	if err != nil {
		return err
	}
	name := ""
	for key, rec := range records {
		if rec.Default {
			name = rec.DisplayName
			if name == "" {
				name = key
			}
			break
		}
	}
	t.mu.Lock()
	t.name = name
	t.count = len(records)
	t.mu.Unlock()
	return nil
}

// Default returns the display name of the default profile and the number of
// profiles seen on the last reload.
func (t *defaultTracker) Default() (string, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name, t.count
}

// EventSource delivers push notifications from the host.
type EventSource interface {
	Events(ctx context.Context) (<-chan octoprint.Event, error)
}

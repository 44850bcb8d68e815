// Package profiles holds the state and actions of the slicing profile
// settings panel: the synchronized profile list, the import staging area and
// the engine path check.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"preprint/internal/octoprint"
)

// API is the subset of the host REST API the panel uses.
type API interface {
	ListProfiles(ctx context.Context) (map[string]octoprint.ProfileRecord, error)
	DeleteProfile(ctx context.Context, resource string) error
	PatchProfile(ctx context.Context, resource string, patch octoprint.ProfilePatch) error
	ImportProfile(ctx context.Context, in octoprint.ImportRequest) (*octoprint.ProfileRecord, error)
	TestExecutable(ctx context.Context, path string) (octoprint.ExecutableTest, error)
}

// SettingsProvider exposes the configured slicing engine path.
type SettingsProvider interface {
	EnginePath() string
}

// LoginState reports whether the current user may manage profiles.
type LoginState interface {
	LoggedIn() bool
}

// Sibling is another view rendering slicing profiles that must reload
// whenever the profile set changes.
type Sibling interface {
	RequestData(ctx context.Context) error
}

// Dialog is the import dialog shown by the front end.
type Dialog interface {
	Show()
	Hide()
}

// EnginePathFunc adapts a function to SettingsProvider.
type EnginePathFunc func() string

func (f EnginePathFunc) EnginePath() string { return f() }

// LoggedInFunc adapts a function to LoginState.
type LoggedInFunc func() bool

func (f LoggedInFunc) LoggedIn() bool { return f() }

// SiblingFunc adapts a function to Sibling.
type SiblingFunc func(ctx context.Context) error

func (f SiblingFunc) RequestData(ctx context.Context) error { return f(ctx) }

type nopDialog struct{}

func (nopDialog) Show() {}
func (nopDialog) Hide() {}

// Options configures a Panel. Nil collaborators are replaced by no-ops.
type Options struct {
	Settings SettingsProvider
	Login    LoginState
	Sibling  Sibling
	Dialog   Dialog
	Now      func() time.Time
	PageSize int
	Logger   *log.Logger
}

// Panel is the profile settings panel. Its methods are safe for concurrent
// use; the lock is never held across a network call, so two overlapping
// actions can still interleave at the server like in any UI.
type Panel struct {
	api      API
	settings SettingsProvider
	login    LoginState
	sibling  Sibling
	dialog   Dialog
	now      func() time.Time
	logger   *log.Logger

	mu       sync.Mutex
	list     *List
	pending  *PendingUpload
	choices  choices
	state    ImportState
	pathTest PathTestResult
}

// New creates a panel backed by api.
func New(api API, opts Options) *Panel {
	p := &Panel{
		api:      api,
		settings: opts.Settings,
		login:    opts.Login,
		sibling:  opts.Sibling,
		dialog:   opts.Dialog,
		now:      opts.Now,
		logger:   opts.Logger,
		list:     NewList(opts.PageSize),
		choices:  defaultChoices(),
	}
	if p.settings == nil {
		p.settings = EnginePathFunc(func() string { return "" })
	}
	if p.login == nil {
		p.login = LoggedInFunc(func() bool { return true })
	}
	if p.sibling == nil {
		p.sibling = SiblingFunc(func(context.Context) error { return nil })
	}
	if p.dialog == nil {
		p.dialog = nopDialog{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard, "", 0)
	}
	return p
}

// OnBeforeBinding loads the initial profile list.
func (p *Panel) OnBeforeBinding(ctx context.Context) error {
	return p.ListProfiles(ctx)
}

// OnSettingsHidden clears the path test when the settings view closes.
func (p *Panel) OnSettingsHidden() {
	p.ResetPathTest()
}

// LoggedIn reports the login state collaborator's answer.
func (p *Panel) LoggedIn() bool {
	return p.login.LoggedIn()
}

// EnginePath returns the configured engine path.
func (p *Panel) EnginePath() string {
	return p.settings.EnginePath()
}

// ListProfiles fetches the profiles and replaces the local list. On failure
// the previous list is kept.
func (p *Panel) ListProfiles(ctx context.Context) error {
	records, err := p.api.ListProfiles(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	items := make([]ProfileSummary, 0, len(records))
	for key, rec := range records {
		items = append(items, summaryFromRecord(key, rec))
	}

	p.mu.Lock()
	p.list.Replace(items)
	p.mu.Unlock()
	p.logger.Printf("[profiles] loaded %d profiles", len(items))
	return nil
}

// RefreshError reports that an action reached the server but reloading the
// profile views afterwards failed.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string { return "refresh after change: " + e.Err.Error() }

func (e *RefreshError) Unwrap() error { return e.Err }

// IsRefreshError reports whether err only failed the reload after a
// successful action.
func IsRefreshError(err error) bool {
	var re *RefreshError
	return errors.As(err, &re)
}

// refreshAll reloads this panel and the sibling view.
func (p *Panel) refreshAll(ctx context.Context) error {
	listErr := p.ListProfiles(ctx)
	var siblingErr error
	if err := p.sibling.RequestData(ctx); err != nil {
		siblingErr = fmt.Errorf("refresh slicing view: %w", err)
	}
	if err := errors.Join(listErr, siblingErr); err != nil {
		return &RefreshError{Err: err}
	}
	return nil
}

// RemoveProfile deletes item. The item leaves the local list before the
// request is sent and is put back if the request fails. Items without a
// resource URL are ignored.
func (p *Panel) RemoveProfile(ctx context.Context, item ProfileSummary) error {
	if item.ResourceURL == "" {
		return nil
	}

	p.mu.Lock()
	removed := p.list.Remove(func(s ProfileSummary) bool { return s.Key == item.Key })
	p.mu.Unlock()

	if err := p.api.DeleteProfile(ctx, item.ResourceURL); err != nil {
		p.mu.Lock()
		p.list.Add(removed...)
		p.mu.Unlock()
		p.logger.Printf("[profiles] delete %s failed, restored locally: %v", item.Key, err)
		return fmt.Errorf("delete profile %q: %w", item.Key, err)
	}
	p.logger.Printf("[profiles] deleted %s", item.Key)
	return p.refreshAll(ctx)
}

// MakeDefault marks item as the default profile. The local flags are updated
// before the request is sent and restored if the request fails. Items
// without a resource URL are ignored.
func (p *Panel) MakeDefault(ctx context.Context, item ProfileSummary) error {
	if item.ResourceURL == "" {
		return nil
	}

	p.mu.Lock()
	previous := make(map[string]bool, p.list.Len())
	p.list.Update(func(s *ProfileSummary) {
		previous[s.Key] = s.IsDefault
		s.IsDefault = s.Key == item.Key
	})
	p.mu.Unlock()

	isDefault := true
	if err := p.api.PatchProfile(ctx, item.ResourceURL, octoprint.ProfilePatch{Default: &isDefault}); err != nil {
		p.mu.Lock()
		p.list.Update(func(s *ProfileSummary) {
			if was, ok := previous[s.Key]; ok {
				s.IsDefault = was
			}
		})
		p.mu.Unlock()
		p.logger.Printf("[profiles] make default %s failed, restored locally: %v", item.Key, err)
		return fmt.Errorf("make profile %q default: %w", item.Key, err)
	}
	p.logger.Printf("[profiles] %s is now the default", item.Key)
	if err := p.ListProfiles(ctx); err != nil {
		return &RefreshError{Err: err}
	}
	return nil
}

// View is a snapshot of the list state for rendering.
type View struct {
	Items     []ProfileSummary // current page
	All       []ProfileSummary
	Page      int
	PageCount int
	Sort      SortMode
}

// View returns a snapshot of the list.
func (p *Panel) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return View{
		Items:     p.list.Page(),
		All:       p.list.Items(),
		Page:      p.list.CurrentPage(),
		PageCount: p.list.PageCount(),
		Sort:      p.list.SortMode(),
	}
}

// Profiles returns all profiles in the current sort order.
func (p *Panel) Profiles() []ProfileSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.Items()
}

// Find looks a profile up by key.
func (p *Panel) Find(key string) (ProfileSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.list.Get(func(s ProfileSummary) bool { return s.Key == key })
}

func (p *Panel) SortBy(mode SortMode) {
	p.mu.Lock()
	p.list.SortBy(mode)
	p.mu.Unlock()
}

func (p *Panel) NextPage() {
	p.mu.Lock()
	p.list.NextPage()
	p.mu.Unlock()
}

func (p *Panel) PrevPage() {
	p.mu.Lock()
	p.list.PrevPage()
	p.mu.Unlock()
}

package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"preprint/internal/config"
	"preprint/internal/octoprint"
	"preprint/internal/profiles"
)

const (
	logFileName    = "preprint.log"
	requestTimeout = 30 * time.Second
	eventsRetry    = 10 * time.Second
)

type viewState int

const (
	viewProfiles viewState = iota
	viewSettings
	viewImport
)

// Model is the main TUI model.
type Model struct {
	state       viewState
	panel       *profiles.Panel
	events      EventSource
	dialog      *dialogState
	tracker     *defaultTracker
	profileList list.Model
	importForm  importFormModel
	settings    settingsModel
	help        help.Model
	cfg         *config.Config
	version     string
	width       int
	height      int
	err         string
	statusMsg   string // non-error status/loading message
	pathTesting bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// profilesLoadedMsg is sent after the profile list was fetched.
type profilesLoadedMsg struct{ err error }

// profileActionMsg is sent after a remove or make-default request finished.
type profileActionMsg struct {
	verb string
	key  string
	err  error
}

// importDoneMsg is sent after a staged import was submitted.
type importDoneMsg struct {
	submitted bool
	err       error
}

// pathTestedMsg carries the result of an engine path test.
type pathTestedMsg struct {
	result profiles.PathTestResult
	err    error
}

// eventsReadyMsg is sent once the events socket is connected.
type eventsReadyMsg struct {
	ch  <-chan octoprint.Event
	err error
}

// profileEventMsg is a push event from the host.
type profileEventMsg struct {
	event octoprint.Event
	ch    <-chan octoprint.Event
}

// eventsClosedMsg is sent when the events socket dropped.
type eventsClosedMsg struct{}

// eventsRetryMsg triggers a reconnect of the events socket.
type eventsRetryMsg struct{}

func newModel(panel *profiles.Panel, events EventSource, dialog *dialogState, tracker *defaultTracker, cfg *config.Config, version string) Model {
	delegate := newStyledDelegate()
	delegate.ShowDescription = true
	pl := list.New(pageItems(panel.View()), delegate, 0, 0)
	pl.SetShowTitle(false)
	pl.SetShowHelp(false)
	pl.SetShowStatusBar(false)
	pl.SetShowPagination(false)
	pl.SetFilteringEnabled(false)

	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		state:       viewProfiles,
		panel:       panel,
		events:      events,
		dialog:      dialog,
		tracker:     tracker,
		profileList: pl,
		help:        help.New(),
		cfg:         cfg,
		version:     version,
		settings:    newSettingsModel(cfg),
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadProfiles(), m.refreshTracker(), m.subscribe())
}

func (m Model) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, requestTimeout)
}

func (m Model) loadProfiles() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		return profilesLoadedMsg{err: m.panel.OnBeforeBinding(ctx)}
	}
}

func (m Model) refreshTracker() tea.Cmd {
	if m.tracker == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := m.requestContext()
		defer cancel()
		m.tracker.RequestData(ctx)
		return nil
	}
}

func (m Model) subscribe() tea.Cmd {
	if m.events == nil {
		return nil
	}
	return func() tea.Msg {
		ch, err := m.events.Events(m.ctx)
		return eventsReadyMsg{ch: ch, err: err}
	}
}

func waitForEvent(ch <-chan octoprint.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return profileEventMsg{event: ev, ch: ch}
	}
}

// syncList copies the current page of the panel into the list widget.
func (m *Model) syncList() {
	idx := m.profileList.Index()
	m.profileList.SetItems(pageItems(m.panel.View()))
	if n := len(m.profileList.Items()); idx >= n && n > 0 {
		idx = n - 1
	}
	m.profileList.Select(idx)
}

func (m Model) selected() (profiles.ProfileSummary, bool) {
	item, ok := m.profileList.SelectedItem().(profileItem)
	if !ok {
		return profiles.ProfileSummary{}, false
	}
	return item.summary, true
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Account for appStyle padding: Padding(1, 2) = 2 vertical, 4 horizontal
		innerWidth := m.width - 4
		innerHeight := m.height - 2

		// header(1) + gap(1) + pager(1) + help(2) + status(1)
		listHeight := innerHeight - 6
		m.profileList.SetSize(innerWidth/2, listHeight)
		m.help.Width = innerWidth
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case viewImport:
			return m.updateImportForm(msg)
		case viewSettings:
			return m.updateSettings(msg)
		}
		return m.updateProfiles(msg)

	case profilesLoadedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.err = ""
		}
		m.syncList()
		return m, nil

	case profileActionMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			m.statusMsg = ""
		} else {
			m.err = ""
			m.statusMsg = fmt.Sprintf("%s %s", msg.verb, msg.key)
		}
		m.syncList()
		return m, m.refreshTracker()

	case importStageMsg:
		m.stage(msg.path)
		return m, nil

	case importSubmitMsg:
		if _, ok := m.panel.Pending(); !ok || m.importForm.stagedPath != msg.path {
			m.importForm.stagedPath = msg.path
			m.stage(msg.path)
		}
		m.panel.SetChoices(msg.name, msg.displayName, msg.description, msg.allowOverwrite)
		return m, func() tea.Msg {
			ctx, cancel := m.requestContext()
			defer cancel()
			submitted, err := m.panel.SubmitUpload(ctx)
			return importDoneMsg{submitted: submitted, err: err}
		}

	case importDoneMsg:
		m.importForm.submitting = false
		if m.dialog.IsVisible() {
			// The upload itself failed; the file stays staged for a retry.
			if msg.err != nil {
				m.importForm.err = msg.err.Error()
			}
			return m, nil
		}
		m.state = viewProfiles
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.err = ""
			m.statusMsg = "profile imported"
		}
		m.syncList()
		return m, m.refreshTracker()

	case pathTestedMsg:
		m.pathTesting = false
		if msg.err != nil {
			m.err = msg.err.Error()
		} else {
			m.err = ""
		}
		return m, nil

	case settingChangedMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("saved %s", msg.key)
		if cfg, err := config.LoadConfig(); err == nil {
			m.cfg = cfg
		}
		return m, nil

	case eventsReadyMsg:
		if msg.err != nil {
			return m, tea.Tick(eventsRetry, func(time.Time) tea.Msg { return eventsRetryMsg{} })
		}
		return m, waitForEvent(msg.ch)

	case eventsRetryMsg:
		return m, m.subscribe()

	case eventsClosedMsg:
		if m.ctx.Err() != nil {
			return m, nil
		}
		return m, tea.Tick(eventsRetry, func(time.Time) tea.Msg { return eventsRetryMsg{} })

	case profileEventMsg:
		cmds := []tea.Cmd{}
		if msg.event.Type == octoprint.EventSlicingProfilesChanged {
			cmds = append(cmds, m.loadProfiles(), m.refreshTracker())
		}
		return m, tea.Batch(append(cmds, waitForEvent(msg.ch))...)
	}

	if m.state == viewImport {
		var cmd tea.Cmd
		m.importForm, cmd = m.importForm.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) stage(path string) {
	if !m.panel.StageUpload([]profiles.UploadFile{profiles.FileFromPath(path)}) {
		return
	}
	if pending, ok := m.panel.Pending(); ok {
		m.importForm.applySuggestions(pending)
	}
}

func (m Model) updateProfiles(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		m.state = viewSettings
		m.settings = newSettingsModel(m.cfg)
		m.err = ""
		return m, nil

	case key.Matches(msg, keys.Import):
		if !m.panel.LoggedIn() {
			m.err = "log in to import profiles"
			return m, nil
		}
		m.panel.OpenImportDialog()
		m.importForm = newImportForm()
		m.state = viewImport
		m.err = ""
		return m, nil

	case key.Matches(msg, keys.Default):
		item, ok := m.selected()
		if !ok || item.IsDefault {
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("making %s default...", item.Key)
		return m, func() tea.Msg {
			ctx, cancel := m.requestContext()
			defer cancel()
			return profileActionMsg{verb: "default is now", key: item.Key, err: m.panel.MakeDefault(ctx, item)}
		}

	case key.Matches(msg, keys.Delete):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("deleting %s...", item.Key)
		return m, func() tea.Msg {
			ctx, cancel := m.requestContext()
			defer cancel()
			return profileActionMsg{verb: "deleted", key: item.Key, err: m.panel.RemoveProfile(ctx, item)}
		}

	case key.Matches(msg, keys.Sort):
		if m.panel.View().Sort == profiles.SortByName {
			m.panel.SortBy(profiles.SortByID)
		} else {
			m.panel.SortBy(profiles.SortByName)
		}
		m.syncList()
		m.profileList.Select(0)
		return m, nil

	case key.Matches(msg, keys.PrevPage):
		m.panel.PrevPage()
		m.syncList()
		m.profileList.Select(0)
		return m, nil

	case key.Matches(msg, keys.NextPage):
		m.panel.NextPage()
		m.syncList()
		m.profileList.Select(0)
		return m, nil

	case key.Matches(msg, keys.Refresh):
		m.statusMsg = "refreshing..."
		return m, tea.Batch(m.loadProfiles(), m.refreshTracker())
	}

	var cmd tea.Cmd
	m.profileList, cmd = m.profileList.Update(msg)
	return m, cmd
}

func (m Model) updateImportForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.panel.ResetStaging()
		m.dialog.Hide()
		m.state = viewProfiles
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.importForm, cmd = m.importForm.Update(msg)
	return m, cmd
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.settings.editing {
		switch msg.String() {
		case "esc":
			m.settings.stopEditing()
			return m, nil
		case "enter":
			item := m.settings.selected()
			item.value = strings.TrimSpace(m.settings.input.Value())
			m.settings.stopEditing()
			if item.key == "slic3rEngine" {
				m.panel.ResetPathTest()
			}
			return m, m.applySetting(item.key, item.value)
		}
		var cmd tea.Cmd
		m.settings.input, cmd = m.settings.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "tab", "esc":
		m.panel.OnSettingsHidden()
		m.state = viewProfiles
		return m, nil
	case "up", "k":
		if m.settings.cursor > 0 {
			m.settings.cursor--
		}
		return m, nil
	case "down", "j":
		if m.settings.cursor < len(m.settings.items)-1 {
			m.settings.cursor++
		}
		return m, nil
	case "t":
		path := m.settings.enginePath()
		m.pathTesting = true
		return m, func() tea.Msg {
			ctx, cancel := m.requestContext()
			defer cancel()
			res, err := m.panel.TestExecutablePath(ctx, path)
			return pathTestedMsg{result: res, err: err}
		}
	case "enter", " ":
		item := m.settings.selected()
		if item.editable {
			m.settings.startEditing()
			return m, nil
		}
		if item.options != nil {
			for i, opt := range item.options {
				if opt == item.value {
					item.value = item.options[(i+1)%len(item.options)]
					return m, m.applySetting(item.key, item.value)
				}
			}
			item.value = item.options[0]
			return m, m.applySetting(item.key, item.value)
		}
	}
	return m, nil
}

func (m Model) applySetting(key, value string) tea.Cmd {
	return func() tea.Msg {
		if key == "debugLogging" {
			value = fmt.Sprint(value == "on")
		}
		err := config.UpdateConfig(func(cfg *config.Config) error {
			return cfg.Set(key, value)
		})
		return settingChangedMsg{key: key, err: err}
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	innerWidth := m.width - 4
	contentHeight := m.height - 7 // appStyle(2) + header(1) + gap(1) + help(2) + status(1)

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	switch m.state {
	case viewImport:
		b.WriteString(m.importForm.View(m.panel.ImportState()))
	case viewSettings:
		b.WriteString(m.settings.View(innerWidth, contentHeight, m.panel.PathTest(), m.pathTesting))
	default:
		leftWidth := innerWidth / 2
		rightWidth := innerWidth - leftWidth - 2

		leftPanel := m.profileList.View() + "\n" + renderPager(m.panel.View())
		var rightPanel string
		if item, ok := m.profileList.SelectedItem().(profileItem); ok {
			rightPanel = renderProfileDetail(item, rightWidth, contentHeight)
		}

		b.WriteString(lipgloss.JoinHorizontal(
			lipgloss.Top,
			lipgloss.NewStyle().Width(leftWidth).Render(leftPanel),
			lipgloss.NewStyle().Width(rightWidth).MarginLeft(2).Render(rightPanel),
		))
	}

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(statusErrorStyle.Render("  Error: " + m.err))
	} else if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(statusOkStyle.Render("  " + m.statusMsg))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.renderHelp()))

	return appStyle.Render(b.String())
}

func (m Model) renderHeader() string {
	innerWidth := m.width - 4

	title := titleStyle.Render(" ▲ preprint ")

	profilesTab := inactiveTabStyle.Render("Profiles")
	settingsTab := inactiveTabStyle.Render("Settings")
	if m.state == viewSettings {
		settingsTab = activeTabStyle.Render("Settings")
	} else {
		profilesTab = activeTabStyle.Render("Profiles")
	}

	info := ""
	if m.tracker != nil {
		if name, count := m.tracker.Default(); name != "" {
			info = lipgloss.NewStyle().
				Foreground(mutedColor).
				Render(fmt.Sprintf("Default: %s | %d profiles", name, count))
		}
	}

	tabs := fmt.Sprintf("%s  %s", profilesTab, settingsTab)
	gap := strings.Repeat(" ", max(0, innerWidth-lipgloss.Width(title)-lipgloss.Width(tabs)-lipgloss.Width(info)-4))

	return fmt.Sprintf("%s  %s%s%s", title, tabs, gap, info)
}

func (m Model) renderHelp() string {
	switch m.state {
	case viewImport:
		return formHintStyle.Render("Tab: switch fields  Space: toggle  Enter: import  Esc: cancel")
	case viewSettings:
		if m.settings.editing {
			return formHintStyle.Render("Enter: save  Esc: cancel")
		}
		return formHintStyle.Render("↑↓ select  Enter edit/cycle  t test engine  tab back  q quit")
	}
	return m.help.View(keys)
}

// Run starts the TUI application against the host configured in the
// config file.
func Run(version string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logFile, err := openLog()
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := profiles.NewLogger(cfg, logFile)

	client := profiles.NewClient(cfg, logger)
	dialog := &dialogState{}
	tracker := &defaultTracker{api: client}
	panel := profiles.New(client, profiles.Options{
		Settings: profiles.ConfigSettings{},
		Login:    profiles.LoggedInFunc(func() bool { return cfg.APIKey != "" }),
		Sibling:  tracker,
		Dialog:   dialog,
		Logger:   logger,
	})

	m := newModel(panel, client, dialog, tracker, cfg, version)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	m.cancel()
	return err
}

func openLog() (*os.File, error) {
	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(config.Dir(), logFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

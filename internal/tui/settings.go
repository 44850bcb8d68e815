package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"preprint/internal/config"
	"preprint/internal/profiles"
)

type settingItem struct {
	label    string   // display label
	key      string   // config key
	value    string   // current value
	options  []string // values to cycle through
	editable bool     // free text
}

type settingsModel struct {
	items   []settingItem
	cursor  int
	editing bool
	input   textinput.Model
}

// settingChangedMsg is sent after a setting value is saved.
type settingChangedMsg struct {
	key string
	err error
}

func newSettingsModel(cfg *config.Config) settingsModel {
	if cfg == nil {
		cfg = &config.Config{}
	}
	debug := "off"
	if cfg.DebugLogging {
		debug = "on"
	}

	ti := textinput.New()
	ti.CharLimit = 512

	return settingsModel{
		input: ti,
		items: []settingItem{
			{
				label:    "Slic3r Engine",
				key:      "slic3rEngine",
				value:    cfg.EnginePath,
				editable: true,
			},
			{
				label:    "Service URL",
				key:      "url",
				value:    cfg.ServiceURL,
				editable: true,
			},
			{
				label:   "Debug Logging",
				key:     "debugLogging",
				value:   debug,
				options: []string{"off", "on"},
			},
			{
				label: "Host",
				key:   "baseUrl",
				value: cfg.BaseURL,
			},
			{
				label: "Config File",
				key:   "configFile",
				value: config.ConfigPath,
			},
		},
	}
}

func (s settingsModel) selected() *settingItem {
	return &s.items[s.cursor]
}

func (s *settingsModel) startEditing() {
	item := s.items[s.cursor]
	s.editing = true
	s.input.SetValue(item.value)
	s.input.CursorEnd()
	s.input.Focus()
}

func (s *settingsModel) stopEditing() {
	s.editing = false
	s.input.Blur()
}

func (s settingsModel) enginePath() string {
	for _, item := range s.items {
		if item.key == "slic3rEngine" {
			return item.value
		}
	}
	return ""
}

func (s settingsModel) View(width, height int, test profiles.PathTestResult, testing bool) string {
	var b strings.Builder

	title := detailLabelStyle.Render("Settings")
	b.WriteString("  " + title + "\n\n")

	for i, item := range s.items {
		cursor := "  "
		labelStyle := formLabelStyle
		if i == s.cursor {
			cursor = "▸ "
			labelStyle = detailLabelStyle
		}
		label := labelStyle.Render(item.label)

		var valueStr string
		switch {
		case i == s.cursor && s.editing:
			valueStr = s.input.View()
		case item.options == nil && !item.editable:
			valueStr = lipgloss.NewStyle().Foreground(mutedColor).Render(item.value)
		case i == s.cursor:
			valueStr = statusOkStyle.Render(item.value)
		default:
			valueStr = detailValueStyle.Render(item.value)
		}
		b.WriteString(fmt.Sprintf("%s%-20s  %s\n", cursor, label, valueStr))

		if item.key == "slic3rEngine" {
			switch {
			case testing:
				b.WriteString(fmt.Sprintf("  %-20s  %s\n", "", statusWarnStyle.Render("testing...")))
			case test.Tested && test.OK:
				b.WriteString(fmt.Sprintf("  %-20s  %s\n", "", statusOkStyle.Render("✓ "+test.Text)))
			case test.Broken():
				b.WriteString(fmt.Sprintf("  %-20s  %s\n", "", statusErrorStyle.Render("✗ "+test.Text)))
			}
		}

		if i == s.cursor {
			if desc := settingDescription(item.key, item.value); desc != "" {
				b.WriteString(fmt.Sprintf("  %-20s  %s\n", "", formHintStyle.Render(desc)))
			}
		}
		b.WriteString("\n")
	}

	return detailBorderStyle.
		Width(max(0, width-4)).
		Height(max(0, height-4)).
		Render(b.String())
}

func settingDescription(key, value string) string {
	switch key {
	case "slic3rEngine":
		return "Path to the Slic3r executable on the host, t to test"
	case "url":
		return "Address of the PrePrintService slicing service"
	case "debugLogging":
		if value == "on" {
			return "Requests are logged to " + logFileName
		}
		return "Only errors are logged"
	case "baseUrl", "configFile":
		return "Read-only, change with: preprint config set"
	}
	return ""
}

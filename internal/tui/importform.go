package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"preprint/internal/profiles"
)

const (
	fieldFile = iota
	fieldName
	fieldDisplayName
	fieldDescription
	fieldOverwrite
	fieldCount
)

// importStageMsg asks the model to stage the file at path.
type importStageMsg struct{ path string }

// importSubmitMsg carries the user's choices. Nil fields fall back to the
// server-side defaults.
type importSubmitMsg struct {
	path           string
	name           *string
	displayName    *string
	description    *string
	allowOverwrite bool
}

type importFormModel struct {
	fileInput        textinput.Model
	nameInput        textinput.Model
	displayNameInput textinput.Model
	descriptionInput textinput.Model
	focused          int
	overwrite        bool
	stagedPath       string
	submitting       bool
	err              string
}

func newImportForm() importFormModel {
	fi := textinput.New()
	fi.Placeholder = "~/profiles/pla_0.2mm.ini"
	fi.CharLimit = 512
	fi.Focus()

	ni := textinput.New()
	ni.CharLimit = 100

	di := textinput.New()
	di.CharLimit = 100

	de := textinput.New()
	de.CharLimit = 300

	return importFormModel{
		fileInput:        fi,
		nameInput:        ni,
		displayNameInput: di,
		descriptionInput: de,
		overwrite:        true,
	}
}

// applySuggestions shows the derived defaults of a staged upload as
// placeholders.
func (m *importFormModel) applySuggestions(p profiles.PendingUpload) {
	m.nameInput.Placeholder = p.SuggestedName
	m.displayNameInput.Placeholder = p.SuggestedDisplayName
	m.descriptionInput.Placeholder = p.SuggestedDescription
}

func (m *importFormModel) focusInput() {
	m.fileInput.Blur()
	m.nameInput.Blur()
	m.displayNameInput.Blur()
	m.descriptionInput.Blur()
	switch m.focused {
	case fieldFile:
		m.fileInput.Focus()
	case fieldName:
		m.nameInput.Focus()
	case fieldDisplayName:
		m.displayNameInput.Focus()
	case fieldDescription:
		m.descriptionInput.Focus()
	}
}

func (m importFormModel) path() string {
	return expandHome(strings.TrimSpace(m.fileInput.Value()))
}

func optional(in textinput.Model) *string {
	v := strings.TrimSpace(in.Value())
	if v == "" {
		return nil
	}
	return &v
}

// moveFocus changes the focused field and stages the file when the path
// field is left with a new value.
func (m importFormModel) moveFocus(delta int) (importFormModel, tea.Cmd) {
	leaving := m.focused
	m.focused = (m.focused + delta + fieldCount) % fieldCount
	m.focusInput()

	path := m.path()
	if leaving == fieldFile && path != "" && path != m.stagedPath {
		m.stagedPath = path
		return m, func() tea.Msg { return importStageMsg{path: path} }
	}
	return m, nil
}

func (m importFormModel) Update(msg tea.Msg) (importFormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.moveFocus(1)
		case "shift+tab", "up":
			return m.moveFocus(-1)
		case " ":
			if m.focused == fieldOverwrite {
				m.overwrite = !m.overwrite
				return m, nil
			}
		case "enter":
			if m.submitting {
				return m, nil
			}
			path := m.path()
			if path == "" {
				m.err = "Choose a profile file first"
				return m, nil
			}
			m.err = ""
			m.submitting = true
			submit := importSubmitMsg{
				path:           path,
				name:           optional(m.nameInput),
				displayName:    optional(m.displayNameInput),
				description:    optional(m.descriptionInput),
				allowOverwrite: m.overwrite,
			}
			return m, func() tea.Msg { return submit }
		}
	}

	var cmd tea.Cmd
	switch m.focused {
	case fieldFile:
		m.fileInput, cmd = m.fileInput.Update(msg)
	case fieldName:
		m.nameInput, cmd = m.nameInput.Update(msg)
	case fieldDisplayName:
		m.displayNameInput, cmd = m.displayNameInput.Update(msg)
	case fieldDescription:
		m.descriptionInput, cmd = m.descriptionInput.Update(msg)
	}
	return m, cmd
}

func fieldLabel(text string, focused bool) string {
	if focused {
		return formFocusedLabelStyle.Render("▸ " + text)
	}
	return formLabelStyle.Render(text)
}

func (m importFormModel) View(state profiles.ImportState) string {
	var b strings.Builder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor).
		MarginBottom(1).
		Render("Import Slicing Profile")
	b.WriteString(title + "\n\n")

	b.WriteString(fieldLabel("Profile file", m.focused == fieldFile) + "\n")
	b.WriteString(m.fileInput.View() + "\n\n")

	b.WriteString(fieldLabel("Identifier", m.focused == fieldName) + "\n")
	b.WriteString(m.nameInput.View() + "\n\n")

	b.WriteString(fieldLabel("Name", m.focused == fieldDisplayName) + "\n")
	b.WriteString(m.displayNameInput.View() + "\n\n")

	b.WriteString(fieldLabel("Description", m.focused == fieldDescription) + "\n")
	b.WriteString(m.descriptionInput.View() + "\n\n")

	toggle := "[ ] no"
	if m.overwrite {
		toggle = "[✓] yes"
	}
	b.WriteString(fieldLabel("Overwrite existing", m.focused == fieldOverwrite) + "  " + detailValueStyle.Render(toggle) + "\n\n")

	switch state {
	case profiles.ImportSubmitting:
		b.WriteString(statusWarnStyle.Render("⏳ Uploading...") + "\n\n")
	case profiles.ImportFailed:
		b.WriteString(statusErrorStyle.Render("✗ Import failed, press enter to retry") + "\n\n")
	}

	if m.err != "" {
		b.WriteString(statusErrorStyle.Render("⚠ "+m.err) + "\n\n")
	}

	return b.String()
}

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"preprint/internal/profiles"
)

// profileItem implements list.Item for slicing profiles.
type profileItem struct {
	summary profiles.ProfileSummary
}

func (i profileItem) Title() string {
	name := i.summary.DisplayName
	if name == "" {
		name = i.summary.Key
	}
	if i.summary.IsDefault {
		name += " ★"
	}
	return name
}

func (i profileItem) Description() string {
	parts := []string{i.summary.Key}
	if i.summary.Description != "" {
		parts = append(parts, i.summary.Description)
	}
	return strings.Join(parts, "  ")
}

func (i profileItem) FilterValue() string {
	return i.summary.Key + " " + i.summary.DisplayName
}

// pageItems converts the current page of the panel into list items.
func pageItems(v profiles.View) []list.Item {
	items := make([]list.Item, len(v.Items))
	for i, s := range v.Items {
		items[i] = profileItem{summary: s}
	}
	return items
}

func renderPager(v profiles.View) string {
	if len(v.All) == 0 {
		return pagerStyle.Render("no profiles")
	}
	return pagerStyle.Render(fmt.Sprintf("page %d/%d  ·  %d profiles  ·  sorted by %s",
		v.Page+1, v.PageCount, len(v.All), v.Sort))
}

// renderProfileDetail renders the right-side detail panel for a profile item.
func renderProfileDetail(item profileItem, width, height int) string {
	var b strings.Builder
	s := item.summary

	b.WriteString(fmt.Sprintf("  %s  %s\n",
		detailLabelStyle.Render("Name:"),
		detailValueStyle.Render(s.DisplayName)))
	b.WriteString(fmt.Sprintf("  %s    %s\n",
		detailLabelStyle.Render("Id:"),
		detailValueStyle.Render(s.Key)))

	defaultVal := "no"
	if s.IsDefault {
		defaultVal = "★ yes"
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n",
		detailLabelStyle.Render("Default:"),
		detailValueStyle.Render(defaultVal)))

	if s.Description != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n  %s\n",
			detailLabelStyle.Render("Description:"),
			detailValueStyle.Render(s.Description)))
	}

	if s.ResourceURL == "" {
		b.WriteString("\n  " + statusWarnStyle.Render("read-only: no resource URL") + "\n")
	}

	return detailBorderStyle.
		Width(max(0, width-4)).
		Height(max(0, height-4)).
		Render(b.String())
}

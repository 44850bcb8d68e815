package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"preprint/internal/config"
	"preprint/internal/output"
	"preprint/internal/profiles"
	"preprint/internal/ui"
)

const requestTimeout = 30 * time.Second

// newPanel builds a profile panel talking to the host from the config file.
// Request logs go to stderr when debugLogging is on.
func newPanel() (*profiles.Panel, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := profiles.NewLogger(cfg, os.Stderr)
	client := profiles.NewClient(cfg, logger)
	panel := profiles.New(client, profiles.Options{
		Settings: profiles.ConfigSettings{},
		Logger:   logger,
	})
	return panel, cfg, nil
}

// commandContext is cancelled on interrupt or after requestTimeout.
func commandContext() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

// loadPanel creates a panel and fetches the profile list.
func loadPanel(ctx context.Context) *profiles.Panel {
	panel, _, err := newPanel()
	if err != nil {
		output.PrintError(err)
	}
	if err := panel.ListProfiles(ctx); err != nil {
		output.PrintError(err)
	}
	return panel
}

func findProfile(panel *profiles.Panel, key string) profiles.ProfileSummary {
	item, ok := panel.Find(key)
	if !ok {
		output.PrintError(fmt.Errorf("profile %q not found", key))
	}
	return item
}

type profileListOutput struct {
	Profiles  []profiles.ProfileSummary `json:"profiles"`
	Page      int                       `json:"page"`
	PageCount int                       `json:"pageCount"`
	Total     int                       `json:"total"`
}

// warnRefresh reports a failed reload after a change that went through. It
// returns false for any other error.
func warnRefresh(err error) bool {
	if !profiles.IsRefreshError(err) {
		return false
	}
	fmt.Fprintf(os.Stderr, "[warn] %v\n", err)
	return true
}

// RunProfileList prints one page (1-based) of profiles, or all of them.
func RunProfileList(sortBy string, page int, all bool) {
	mode := profiles.SortMode(sortBy)
	if mode != profiles.SortByID && mode != profiles.SortByName {
		output.PrintError(fmt.Errorf("invalid sort %q (valid: id, name)", sortBy))
	}

	ctx, cancel := commandContext()
	defer cancel()
	panel := loadPanel(ctx)
	panel.SortBy(mode)
	for i := 1; i < page; i++ {
		panel.NextPage()
	}

	view := panel.View()
	items := view.Items
	if all {
		items = view.All
	}
	result := profileListOutput{
		Profiles:  items,
		Page:      view.Page + 1,
		PageCount: view.PageCount,
		Total:     len(view.All),
	}

	output.Print(result, func() {
		if len(view.All) == 0 {
			ui.ShowInfo("No slicing profiles on the host")
			ui.ShowInfo("Run 'preprint profile import <file>' to add one")
			return
		}
		ui.ShowHeader("Slicing Profiles")
		for _, p := range items {
			fmt.Println(formatProfile(p))
		}
		if !all && view.PageCount > 1 {
			fmt.Println()
			ui.ShowInfo("Page %d of %d (%d profiles), use --page or --all", view.Page+1, view.PageCount, len(view.All))
		}
	})
}

func formatProfile(p profiles.ProfileSummary) string {
	marker := " "
	if p.IsDefault {
		marker = "★"
	}
	line := fmt.Sprintf("  %s %-24s %s", marker, p.Key, p.DisplayName)
	if p.Description != "" {
		line += "\n      " + p.Description
	}
	return line
}

type importOptions struct {
	name           *string
	displayName    *string
	description    *string
	allowOverwrite bool
}

// RunProfileImport stages file and uploads it with the given overrides.
func RunProfileImport(file string, opts importOptions) {
	if _, err := os.Stat(file); err != nil {
		output.PrintError(err)
	}

	panel, _, err := newPanel()
	if err != nil {
		output.PrintError(err)
	}
	panel.StageUpload([]profiles.UploadFile{profiles.FileFromPath(file)})
	panel.SetChoices(opts.name, opts.displayName, opts.description, opts.allowOverwrite)
	pending, _ := panel.Pending()

	ctx, cancel := commandContext()
	defer cancel()
	if !output.JSONMode {
		ui.ShowLoading("Importing %s", pending.FileName)
	}
	if _, err := panel.SubmitUpload(ctx); err != nil && !warnRefresh(err) {
		output.PrintError(err)
	}

	key := pending.SuggestedName
	if opts.name != nil {
		key = profiles.SanitizeName(*opts.name)
	}
	output.Print(map[string]string{"key": key, "file": pending.FileName}, func() {
		ui.ShowSuccess("Imported %s as %s", pending.FileName, key)
	})
}

// RunProfileRemove deletes a profile after confirmation.
func RunProfileRemove(key string, yes bool) {
	ctx, cancel := commandContext()
	defer cancel()
	panel := loadPanel(ctx)
	item := findProfile(panel, key)

	if !yes && !output.JSONMode && term.IsTerminal(int(os.Stdin.Fd())) {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete profile %s (%s)?", item.Key, item.DisplayName)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			output.PrintError(err)
		}
		if !confirmed {
			ui.ShowWarning("Aborted")
			return
		}
	}

	if err := panel.RemoveProfile(ctx, item); err != nil && !warnRefresh(err) {
		output.PrintError(err)
	}
	output.Print(map[string]string{"removed": item.Key}, func() {
		ui.ShowSuccess("Removed %s", item.Key)
	})
}

// RunProfileDefault makes a profile the default one.
func RunProfileDefault(key string) {
	ctx, cancel := commandContext()
	defer cancel()
	panel := loadPanel(ctx)
	item := findProfile(panel, key)

	if err := panel.MakeDefault(ctx, item); err != nil && !warnRefresh(err) {
		output.PrintError(err)
	}
	output.Print(map[string]string{"default": item.Key}, func() {
		ui.ShowSuccess("%s is now the default profile", item.Key)
	})
}

// RunTestPath checks the engine path on the host.
func RunTestPath(path string) {
	panel, cfg, err := newPanel()
	if err != nil {
		output.PrintError(err)
	}
	if path == "" && cfg.EnginePath == "" {
		output.PrintError(fmt.Errorf("no path given and slic3rEngine is not configured"))
	}

	ctx, cancel := commandContext()
	defer cancel()
	res, err := panel.TestExecutablePath(ctx, path)
	if err != nil {
		output.PrintError(err)
	}

	output.Print(res, func() {
		if res.OK {
			ui.ShowSuccess("%s: %s", res.Path, res.Text)
			return
		}
		ui.ShowError(fmt.Sprintf("%s: %s", res.Path, res.Text), nil)
	})
	if !res.OK {
		os.Exit(1)
	}
}

// completeProfileKeys offers the profile identifiers of the host.
func completeProfileKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	panel, _, err := newPanel()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := panel.ListProfiles(ctx); err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []string
	for _, p := range panel.Profiles() {
		if strings.HasPrefix(p.Key, toComplete) {
			keys = append(keys, p.Key)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

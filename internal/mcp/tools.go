package mcpserver

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"preprint/internal/profiles"
)

type profileTools struct {
	panel *profiles.Panel
}

func registerProfileTools(server *mcpsdk.Server, t *profileTools) {
	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_profiles",
		Description: "List the slicing profiles of the host, five per page, sorted by id or name",
	}, t.listProfiles)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "make_default",
		Description: "Make a slicing profile the default one",
	}, t.makeDefault)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "remove_profile",
		Description: "Delete a slicing profile from the host",
	}, t.removeProfile)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "import_profile",
		Description: "Upload a local Slic3r profile file to the host",
	}, t.importProfile)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "test_engine_path",
		Description: "Check that the Slic3r executable exists on the host and can be run",
	}, t.testEnginePath)
}

// list_profiles

type listProfilesInput struct {
	Sort string `json:"sort,omitempty" jsonschema:"Sort order: id (default) or name"`
	Page int    `json:"page,omitempty" jsonschema:"1-based page number (default 1)"`
	All  bool   `json:"all,omitempty" jsonschema:"Return every profile instead of one page"`
}

type listProfilesOutput struct {
	Profiles  []profiles.ProfileSummary `json:"profiles"`
	Page      int                       `json:"page"`
	PageCount int                       `json:"pageCount"`
	Total     int                       `json:"total"`
}

func (t *profileTools) listProfiles(ctx context.Context, req *mcpsdk.CallToolRequest, input listProfilesInput) (*mcpsdk.CallToolResult, listProfilesOutput, error) {
	mode := profiles.SortByID
	switch input.Sort {
	case "", "id":
	case "name":
		mode = profiles.SortByName
	default:
		return nil, listProfilesOutput{}, fmt.Errorf("invalid sort %q (valid: id, name)", input.Sort)
	}

	if err := t.panel.ListProfiles(ctx); err != nil {
		return nil, listProfilesOutput{}, err
	}
	t.panel.SortBy(mode)
	for i := 1; i < input.Page; i++ {
		t.panel.NextPage()
	}

	v := t.panel.View()
	items := v.Items
	if input.All {
		items = v.All
	}
	if items == nil {
		items = []profiles.ProfileSummary{}
	}
	return nil, listProfilesOutput{
		Profiles:  items,
		Page:      v.Page + 1,
		PageCount: v.PageCount,
		Total:     len(v.All),
	}, nil
}

// lookup refreshes the list and finds key in it.
func (t *profileTools) lookup(ctx context.Context, key string) (profiles.ProfileSummary, error) {
	if key == "" {
		return profiles.ProfileSummary{}, fmt.Errorf("key is required")
	}
	if err := t.panel.ListProfiles(ctx); err != nil {
		return profiles.ProfileSummary{}, err
	}
	item, ok := t.panel.Find(key)
	if !ok {
		return profiles.ProfileSummary{}, fmt.Errorf("profile %q not found", key)
	}
	return item, nil
}

// make_default

type profileKeyInput struct {
	Key string `json:"key" jsonschema:"Profile identifier"`
}

type makeDefaultOutput struct {
	Default string `json:"default"`
}

func (t *profileTools) makeDefault(ctx context.Context, req *mcpsdk.CallToolRequest, input profileKeyInput) (*mcpsdk.CallToolResult, makeDefaultOutput, error) {
	item, err := t.lookup(ctx, input.Key)
	if err != nil {
		return nil, makeDefaultOutput{}, err
	}
	if err := t.panel.MakeDefault(ctx, item); err != nil && !profiles.IsRefreshError(err) {
		return nil, makeDefaultOutput{}, err
	}
	return nil, makeDefaultOutput{Default: item.Key}, nil
}

// remove_profile

type removeProfileOutput struct {
	Removed bool `json:"removed"`
}

func (t *profileTools) removeProfile(ctx context.Context, req *mcpsdk.CallToolRequest, input profileKeyInput) (*mcpsdk.CallToolResult, removeProfileOutput, error) {
	item, err := t.lookup(ctx, input.Key)
	if err != nil {
		return nil, removeProfileOutput{}, err
	}
	if err := t.panel.RemoveProfile(ctx, item); err != nil && !profiles.IsRefreshError(err) {
		return nil, removeProfileOutput{}, err
	}
	return nil, removeProfileOutput{Removed: true}, nil
}

// import_profile

type importProfileInput struct {
	Path           string  `json:"path" jsonschema:"Local path of the profile file"`
	Name           *string `json:"name,omitempty" jsonschema:"Profile identifier (default: sanitized file name)"`
	DisplayName    *string `json:"displayName,omitempty" jsonschema:"Display name (default: file name without extension)"`
	Description    *string `json:"description,omitempty" jsonschema:"Description (default: import date)"`
	AllowOverwrite *bool   `json:"allowOverwrite,omitempty" jsonschema:"Replace an existing profile with the same identifier (default true)"`
}

type importProfileOutput struct {
	Imported bool   `json:"imported"`
	Key      string `json:"key"`
	Warning  string `json:"warning,omitempty"`
}

func (t *profileTools) importProfile(ctx context.Context, req *mcpsdk.CallToolRequest, input importProfileInput) (*mcpsdk.CallToolResult, importProfileOutput, error) {
	if input.Path == "" {
		return nil, importProfileOutput{}, fmt.Errorf("path is required")
	}
	if _, err := os.Stat(input.Path); err != nil {
		return nil, importProfileOutput{}, err
	}

	allowOverwrite := true
	if input.AllowOverwrite != nil {
		allowOverwrite = *input.AllowOverwrite
	}

	t.panel.StageUpload([]profiles.UploadFile{profiles.FileFromPath(input.Path)})
	t.panel.SetChoices(input.Name, input.DisplayName, input.Description, allowOverwrite)
	pending, _ := t.panel.Pending()
	var warning string
	if _, err := t.panel.SubmitUpload(ctx); err != nil {
		if !profiles.IsRefreshError(err) {
			t.panel.ResetStaging()
			return nil, importProfileOutput{}, err
		}
		warning = err.Error()
	}

	key := pending.SuggestedName
	if input.Name != nil {
		key = profiles.SanitizeName(*input.Name)
	}
	return nil, importProfileOutput{Imported: true, Key: key, Warning: warning}, nil
}

// test_engine_path

type testEnginePathInput struct {
	Path string `json:"path,omitempty" jsonschema:"Path to test (default: configured slic3rEngine)"`
}

func (t *profileTools) testEnginePath(ctx context.Context, req *mcpsdk.CallToolRequest, input testEnginePathInput) (*mcpsdk.CallToolResult, profiles.PathTestResult, error) {
	res, err := t.panel.TestExecutablePath(ctx, input.Path)
	if err != nil {
		return nil, profiles.PathTestResult{}, err
	}
	return nil, res, nil
}

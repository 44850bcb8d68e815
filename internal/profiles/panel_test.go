package profiles_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preprint/internal/octoprint"
	"preprint/internal/profiles"
)

type call struct {
	method   string
	resource string
}

type fakeAPI struct {
	mu        sync.Mutex
	profiles  map[string]octoprint.ProfileRecord
	calls     []call
	deleteErr error
	patchErr  error
	importErr error
	listErr   error
	imported  []octoprint.ImportRequest
	body      string
	pathTest  octoprint.ExecutableTest
	testedFor string
}

func (f *fakeAPI) record(method, resource string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{method, resource})
}

func (f *fakeAPI) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ListProfiles(ctx context.Context) (map[string]octoprint.ProfileRecord, error) {
	f.record("GET", "")
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make(map[string]octoprint.ProfileRecord, len(f.profiles))
	for k, v := range f.profiles {
		out[k] = v
	}
	return out, nil
}

func (f *fakeAPI) DeleteProfile(ctx context.Context, resource string) error {
	f.record("DELETE", resource)
	return f.deleteErr
}

func (f *fakeAPI) PatchProfile(ctx context.Context, resource string, patch octoprint.ProfilePatch) error {
	f.record("PATCH", resource)
	return f.patchErr
}

func (f *fakeAPI) ImportProfile(ctx context.Context, in octoprint.ImportRequest) (*octoprint.ProfileRecord, error) {
	f.record("POST", in.FileName)
	if f.importErr != nil {
		return nil, f.importErr
	}
	data, _ := io.ReadAll(in.File)
	f.body = string(data)
	f.imported = append(f.imported, in)
	return &octoprint.ProfileRecord{}, nil
}

func (f *fakeAPI) TestExecutable(ctx context.Context, path string) (octoprint.ExecutableTest, error) {
	f.record("TEST", path)
	f.testedFor = path
	return f.pathTest, nil
}

func record(name string, isDefault bool) octoprint.ProfileRecord {
	return octoprint.ProfileRecord{
		DisplayName: name,
		Description: name + " profile",
		Default:     isDefault,
		Resource:    "http://host/api/slicing/preprintservice/profiles/" + strings.ToLower(name),
	}
}

func newPanel(t *testing.T, api *fakeAPI) (*profiles.Panel, *int) {
	t.Helper()
	siblingCalls := 0
	p := profiles.New(api, profiles.Options{
		Sibling: profiles.SiblingFunc(func(context.Context) error {
			siblingCalls++
			return nil
		}),
		Now: func() time.Time { return time.Date(2024, 3, 9, 14, 5, 0, 0, time.Local) },
	})
	return p, &siblingCalls
}

func keys(items []profiles.ProfileSummary) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}

func TestListProfilesReplacesWholesale(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{
		"a": record("A", true),
		"b": record("B", false),
	}}
	p, _ := newPanel(t, api)
	ctx := context.Background()

	require.NoError(t, p.ListProfiles(ctx))
	assert.Equal(t, []string{"a", "b"}, keys(p.Profiles()))

	api.profiles = map[string]octoprint.ProfileRecord{"c": record("C", false)}
	require.NoError(t, p.ListProfiles(ctx))
	assert.Equal(t, []string{"c"}, keys(p.Profiles()))
}

func TestListProfilesFailureKeepsList(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{"a": record("A", false)}}
	p, _ := newPanel(t, api)
	ctx := context.Background()
	require.NoError(t, p.ListProfiles(ctx))

	api.listErr = errors.New("connection refused")
	err := p.ListProfiles(ctx)
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, keys(p.Profiles()))
}

func TestMakeDefaultResyncsFromServer(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{
		"a": record("A", true),
		"b": record("B", false),
		"c": record("C", false),
	}}
	p, siblings := newPanel(t, api)
	ctx := context.Background()
	require.NoError(t, p.ListProfiles(ctx))

	target, ok := p.Find("c")
	require.True(t, ok)
	api.profiles = map[string]octoprint.ProfileRecord{
		"a": record("A", false),
		"b": record("B", false),
		"c": record("C", true),
	}
	require.NoError(t, p.MakeDefault(ctx, target))

	defaults := 0
	for _, it := range p.Profiles() {
		if it.IsDefault {
			defaults++
			assert.Equal(t, "c", it.Key)
		}
	}
	assert.Equal(t, 1, defaults)
	assert.Equal(t, 1, api.count("PATCH"))
	assert.Equal(t, 2, api.count("GET"))
	assert.Equal(t, 0, *siblings)
}

func TestMakeDefaultOptimisticBeforeResponse(t *testing.T) {
	api := &blockingAPI{fakeAPI: fakeAPI{profiles: map[string]octoprint.ProfileRecord{
		"a": record("A", true),
		"b": record("B", false),
		"c": record("C", true),
	}}, release: make(chan struct{}), entered: make(chan struct{})}
	p := profiles.New(api, profiles.Options{})
	ctx := context.Background()
	require.NoError(t, p.ListProfiles(ctx))

	target, _ := p.Find("b")
	errc := make(chan error, 1)
	go func() { errc <- p.MakeDefault(ctx, target) }()

	<-api.entered
	for _, it := range p.Profiles() {
		assert.Equal(t, it.Key == "b", it.IsDefault, "profile %s", it.Key)
	}
	close(api.release)
	require.NoError(t, <-errc)
}

func TestMakeDefaultRollsBackOnFailure(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{
		"a": record("A", true),
		"b": record("B", false),
	}}
	p, _ := newPanel(t, api)
	ctx := context.Background()
	require.NoError(t, p.ListProfiles(ctx))

	api.patchErr = &octoprint.APIError{Method: "PATCH", StatusCode: 500}
	target, _ := p.Find("b")
	err := p.MakeDefault(ctx, target)
	require.Error(t, err)

	var apiErr *octoprint.APIError
	assert.True(t, errors.As(err, &apiErr))

	a, _ := p.Find("a")
	b, _ := p.Find("b")
	assert.True(t, a.IsDefault)
	assert.False(t, b.IsDefault)
}

func TestMakeDefaultWithoutResourceIsNoop(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{"a": record("A", true)}}
	p, _ := newPanel(t, api)
	require.NoError(t, p.ListProfiles(context.Background()))

	require.NoError(t, p.MakeDefault(context.Background(), profiles.ProfileSummary{Key: "a"}))
	assert.Equal(t, 0, api.count("PATCH"))
}

func TestRemoveProfileWithoutResourceIsNoop(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{
		"a": record("A", false),
		"b": record("B", false),
	}}
	p, siblings := newPanel(t, api)
	ctx := context.Background()
	require.NoError(t, p.ListProfiles(ctx))
	before := len(api.calls)

	require.NoError(t, p.RemoveProfile(ctx, profiles.ProfileSummary{Key: "a"}))
	assert.Len(t, p.Profiles(), 2)
	assert.Len(t, api.calls, before)
	assert.Equal(t, 0, *siblings)
}

func TestRemoveProfileRefreshesBothViews(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{
		"a": record("A", false),
		"b": record("B", false),
	}}
	p, siblings := newPanel(t, api)
	ctx := context.Background()
	require.NoError(t, p.ListProfiles(ctx))

	target, _ := p.Find("a")
	delete(api.profiles, "a")
	require.NoError(t, p.RemoveProfile(ctx, target))

	assert.Equal(t, []string{"b"}, keys(p.Profiles()))
	assert.Equal(t, 1, api.count("DELETE"))
	assert.Equal(t, 2, api.count("GET"))
	assert.Equal(t, 1, *siblings)
}

func TestRemoveProfileRestoresOnFailure(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{
		"a": record("A", false),
		"b": record("B", false),
	}}
	p, siblings := newPanel(t, api)
	ctx := context.Background()
	require.NoError(t, p.ListProfiles(ctx))

	api.deleteErr = errors.New("network down")
	target, _ := p.Find("a")
	require.Error(t, p.RemoveProfile(ctx, target))

	assert.Equal(t, []string{"a", "b"}, keys(p.Profiles()))
	assert.Equal(t, 0, *siblings)
}

func TestStageUploadRejectsEmptySelection(t *testing.T) {
	p, _ := newPanel(t, &fakeAPI{})
	assert.False(t, p.StageUpload(nil))
	_, ok := p.Pending()
	assert.False(t, ok)
	assert.Equal(t, profiles.ImportIdle, p.ImportState())
}

func memFile(name, body string) profiles.UploadFile {
	return profiles.UploadFile{
		Name: name,
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func TestStageUploadSuggestions(t *testing.T) {
	p, _ := newPanel(t, &fakeAPI{})
	require.True(t, p.StageUpload([]profiles.UploadFile{memFile("My File #1.ini", "[print]")}))

	pending, ok := p.Pending()
	require.True(t, ok)
	assert.Equal(t, "My File #1.ini", pending.FileName)
	assert.Equal(t, "my_file_1", pending.SuggestedName)
	assert.Equal(t, "My File #1", pending.SuggestedDisplayName)
	assert.Equal(t, "Imported from My File #1.ini on 2024-03-09 14:05", pending.SuggestedDescription)
	assert.True(t, pending.AllowOverwrite)
	assert.Nil(t, pending.Request.Name)
	assert.Nil(t, pending.Request.DisplayName)
	assert.Nil(t, pending.Request.Description)
	assert.Equal(t, profiles.ImportFileChosen, p.ImportState())
}

func TestStageUploadOverlaysChoices(t *testing.T) {
	p, _ := newPanel(t, &fakeAPI{})
	name, display := "custom", "Custom Profile"
	p.SetChoices(&name, &display, nil, false)
	require.True(t, p.StageUpload([]profiles.UploadFile{memFile("x.ini", "")}))

	pending, _ := p.Pending()
	require.NotNil(t, pending.Request.Name)
	assert.Equal(t, "custom", *pending.Request.Name)
	assert.Equal(t, "Custom Profile", *pending.Request.DisplayName)
	assert.Nil(t, pending.Request.Description)
	assert.False(t, pending.Request.AllowOverwrite)

	desc := "edited later"
	p.SetChoices(&name, &display, &desc, true)
	pending, _ = p.Pending()
	assert.Equal(t, "edited later", *pending.Request.Description)
	assert.True(t, pending.Request.AllowOverwrite)
}

type recordingDialog struct{ shown, hidden int }

func (d *recordingDialog) Show() { d.shown++ }
func (d *recordingDialog) Hide() { d.hidden++ }

func TestSubmitUploadNoopWhenNothingStaged(t *testing.T) {
	api := &fakeAPI{}
	p, _ := newPanel(t, api)
	sent, err := p.SubmitUpload(context.Background())
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, api.calls)
}

func TestSubmitUploadClearsAndRefreshes(t *testing.T) {
	api := &fakeAPI{profiles: map[string]octoprint.ProfileRecord{"x": record("X", false)}}
	dialog := &recordingDialog{}
	siblings := 0
	p := profiles.New(api, profiles.Options{
		Dialog:  dialog,
		Sibling: profiles.SiblingFunc(func(context.Context) error { siblings++; return nil }),
	})

	p.OpenImportDialog()
	assert.Equal(t, 1, dialog.shown)
	require.True(t, p.StageUpload([]profiles.UploadFile{memFile("x.ini", "layer_height = 0.2")}))

	sent, err := p.SubmitUpload(context.Background())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, "layer_height = 0.2", api.body)
	require.Len(t, api.imported, 1)
	assert.True(t, api.imported[0].AllowOverwrite)

	_, staged := p.Pending()
	assert.False(t, staged)
	assert.Equal(t, profiles.ImportIdle, p.ImportState())
	assert.Equal(t, 1, dialog.hidden)
	assert.Equal(t, 1, siblings)
	assert.Equal(t, []string{"x"}, keys(p.Profiles()))
}

func TestSubmitUploadFailureKeepsStaging(t *testing.T) {
	api := &fakeAPI{importErr: &octoprint.APIError{Method: "POST", StatusCode: 409, Message: "exists"}}
	dialog := &recordingDialog{}
	p := profiles.New(api, profiles.Options{Dialog: dialog})
	require.True(t, p.StageUpload([]profiles.UploadFile{memFile("x.ini", "")}))

	sent, err := p.SubmitUpload(context.Background())
	assert.True(t, sent)
	require.Error(t, err)
	_, staged := p.Pending()
	assert.True(t, staged)
	assert.Equal(t, profiles.ImportFailed, p.ImportState())
	assert.Equal(t, 0, dialog.hidden)
}

func TestResetStagingRestoresDefaults(t *testing.T) {
	p, _ := newPanel(t, &fakeAPI{})
	name := "n"
	p.SetChoices(&name, nil, nil, false)
	p.StageUpload([]profiles.UploadFile{memFile("a.ini", "")})

	p.ResetStaging()
	_, staged := p.Pending()
	assert.False(t, staged)

	p.StageUpload([]profiles.UploadFile{memFile("a.ini", "")})
	pending, _ := p.Pending()
	assert.Nil(t, pending.Request.Name)
	assert.True(t, pending.AllowOverwrite)
}

// blockingAPI holds PATCH requests until release is closed.
type blockingAPI struct {
	fakeAPI
	entered chan struct{}
	release chan struct{}
}

func (b *blockingAPI) PatchProfile(ctx context.Context, resource string, patch octoprint.ProfilePatch) error {
	close(b.entered)
	<-b.release
	return b.fakeAPI.PatchProfile(ctx, resource, patch)
}

func TestSubmitUploadRefreshFailureIsDistinct(t *testing.T) {
	api := &fakeAPI{}
	p := profiles.New(api, profiles.Options{
		Sibling: profiles.SiblingFunc(func(context.Context) error { return errors.New("offline") }),
	})
	require.True(t, p.StageUpload([]profiles.UploadFile{memFile("x.ini", "")}))

	sent, err := p.SubmitUpload(context.Background())
	assert.True(t, sent)
	require.Error(t, err)
	assert.True(t, profiles.IsRefreshError(err))
	require.Len(t, api.imported, 1)
	_, staged := p.Pending()
	assert.False(t, staged)
}

func TestSubmitUploadRejectionIsNotRefreshError(t *testing.T) {
	api := &fakeAPI{importErr: &octoprint.APIError{Method: "POST", StatusCode: 409, Message: "exists"}}
	p := profiles.New(api, profiles.Options{})
	require.True(t, p.StageUpload([]profiles.UploadFile{memFile("x.ini", "")}))

	_, err := p.SubmitUpload(context.Background())
	require.Error(t, err)
	assert.False(t, profiles.IsRefreshError(err))
}

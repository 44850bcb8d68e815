package profiles

import (
	"context"
	"fmt"

	"preprint/internal/octoprint"
)

const (
	PathDoesNotExist  = "The path doesn't exist"
	PathNotAFile      = "The path is not a file"
	PathNotExecutable = "The path is not an executable"
	PathValid         = "The path is valid"
	PathInvalid       = "The path is not valid"
)

// PathTestResult is the outcome of the last engine path check.
type PathTestResult struct {
	Path     string `json:"path"`
	Tested   bool   `json:"tested"`
	Exists   bool   `json:"exists"`
	TypeOK   bool   `json:"typeOk"`
	AccessOK bool   `json:"accessOk"`
	OK       bool   `json:"ok"`
	Text     string `json:"text"`
}

// Broken reports a completed test that failed.
func (r PathTestResult) Broken() bool {
	return r.Tested && !r.OK
}

// NewPathTestResult maps the host's answer to a result. Negative reasons are
// checked in order: missing, not a file, not executable.
func NewPathTestResult(path string, res octoprint.ExecutableTest) PathTestResult {
	r := PathTestResult{
		Path:     path,
		Tested:   true,
		Exists:   res.Exists,
		TypeOK:   res.TypeOK,
		AccessOK: res.Access,
	}
	switch {
	case !res.Exists:
		r.Text = PathDoesNotExist
	case !res.TypeOK:
		r.Text = PathNotAFile
	case !res.Access:
		r.Text = PathNotExecutable
	case res.Result:
		r.OK = true
		r.Text = PathValid
	default:
		r.Text = PathInvalid
	}
	return r
}

// TestExecutablePath checks path on the host, falling back to the configured
// engine path when path is empty. A failed request leaves the previous
// result in place.
func (p *Panel) TestExecutablePath(ctx context.Context, path string) (PathTestResult, error) {
	if path == "" {
		path = p.settings.EnginePath()
	}
	res, err := p.api.TestExecutable(ctx, path)
	if err != nil {
		return PathTestResult{}, fmt.Errorf("test path %q: %w", path, err)
	}

	r := NewPathTestResult(path, res)
	p.mu.Lock()
	p.pathTest = r
	p.mu.Unlock()
	return r, nil
}

// PathTest returns the last path test result.
func (p *Panel) PathTest() PathTestResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pathTest
}

// ResetPathTest forgets the last path test.
func (p *Panel) ResetPathTest() {
	p.mu.Lock()
	p.pathTest = PathTestResult{}
	p.mu.Unlock()
}

package profiles

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"preprint/internal/octoprint"
)

// ImportState tracks the import dialog flow.
type ImportState int

const (
	ImportIdle ImportState = iota
	ImportFileChosen
	ImportSubmitting
	ImportFailed
)

func (s ImportState) String() string {
	switch s {
	case ImportFileChosen:
		return "file chosen"
	case ImportSubmitting:
		return "submitting"
	case ImportFailed:
		return "failed"
	}
	return "idle"
}

// UploadFile is a file picked for import. Open is called once per submit.
type UploadFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FileFromPath returns an UploadFile reading path from disk.
func FileFromPath(path string) UploadFile {
	return UploadFile{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}
}

// UploadRequest is the import about to be sent. Nil fields are omitted.
type UploadRequest struct {
	File           UploadFile
	AllowOverwrite bool
	Name           *string
	DisplayName    *string
	Description    *string
}

// PendingUpload is a staged import waiting for confirmation.
type PendingUpload struct {
	FileName             string
	SuggestedName        string
	SuggestedDisplayName string
	SuggestedDescription string
	ChosenName           *string
	ChosenDisplayName    *string
	ChosenDescription    *string
	AllowOverwrite       bool
	Request              UploadRequest
}

type choices struct {
	name           *string
	displayName    *string
	description    *string
	allowOverwrite bool
}

func defaultChoices() choices {
	return choices{allowOverwrite: true}
}

// OpenImportDialog clears any staged import and shows the dialog.
func (p *Panel) OpenImportDialog() {
	p.ResetStaging()
	p.dialog.Show()
}

// ResetStaging drops the staged import and the user's choices.
func (p *Panel) ResetStaging() {
	p.mu.Lock()
	p.resetStagingLocked()
	p.mu.Unlock()
}

func (p *Panel) resetStagingLocked() {
	p.pending = nil
	p.choices = defaultChoices()
	p.state = ImportIdle
}

// StageUpload prepares the import of the first file and keeps it pending
// until SubmitUpload. It returns false when no file was given.
func (p *Panel) StageUpload(files []UploadFile) bool {
	if len(files) == 0 {
		return false
	}
	f := files[0]
	base := TrimExtension(f.Name)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending = &PendingUpload{
		FileName:             f.Name,
		SuggestedName:        SanitizeName(base),
		SuggestedDisplayName: base,
		SuggestedDescription: fmt.Sprintf("Imported from %s on %s", f.Name, p.now().Format(DescriptionDateLayout)),
	}
	p.applyChoicesLocked(f)
	p.state = ImportFileChosen
	return true
}

// SetChoices records the user's overrides. A nil field keeps the server-side
// default for that field.
func (p *Panel) SetChoices(name, displayName, description *string, allowOverwrite bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.choices = choices{
		name:           name,
		displayName:    displayName,
		description:    description,
		allowOverwrite: allowOverwrite,
	}
	if p.pending != nil {
		p.applyChoicesLocked(p.pending.Request.File)
	}
}

func (p *Panel) applyChoicesLocked(f UploadFile) {
	c := p.choices
	p.pending.ChosenName = c.name
	p.pending.ChosenDisplayName = c.displayName
	p.pending.ChosenDescription = c.description
	p.pending.AllowOverwrite = c.allowOverwrite
	p.pending.Request = UploadRequest{
		File:           f,
		AllowOverwrite: c.allowOverwrite,
		Name:           c.name,
		DisplayName:    c.displayName,
		Description:    c.description,
	}
}

// Pending returns a copy of the staged import.
func (p *Panel) Pending() (PendingUpload, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return PendingUpload{}, false
	}
	return *p.pending, true
}

func (p *Panel) ImportState() ImportState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SubmitUpload sends the staged import. It reports false without doing
// anything when nothing is staged. On success the staging area is cleared,
// the dialog hidden and both profile views reloaded. On failure the import
// stays staged so it can be submitted again.
func (p *Panel) SubmitUpload(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.pending == nil {
		p.mu.Unlock()
		return false, nil
	}
	req := p.pending.Request
	p.state = ImportSubmitting
	p.mu.Unlock()

	if err := p.submit(ctx, req); err != nil {
		p.mu.Lock()
		p.state = ImportFailed
		p.mu.Unlock()
		p.logger.Printf("[profiles] import %s failed: %v", req.File.Name, err)
		return true, fmt.Errorf("import %s: %w", req.File.Name, err)
	}
	p.logger.Printf("[profiles] imported %s", req.File.Name)

	p.ResetStaging()
	p.dialog.Hide()
	return true, p.refreshAll(ctx)
}

func (p *Panel) submit(ctx context.Context, req UploadRequest) error {
	if req.File.Open == nil {
		return fmt.Errorf("no file to read")
	}
	rc, err := req.File.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = p.api.ImportProfile(ctx, octoprint.ImportRequest{
		File:           rc,
		FileName:       req.File.Name,
		AllowOverwrite: req.AllowOverwrite,
		Name:           req.Name,
		DisplayName:    req.DisplayName,
		Description:    req.Description,
	})
	return err
}

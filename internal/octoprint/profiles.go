package octoprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// ProfileRecord is one entry of the profiles listing, keyed by profile id.
type ProfileRecord struct {
	Key         string `json:"key,omitempty"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Default     bool   `json:"default"`
	Resource    string `json:"resource,omitempty"`
}

// ProfilePatch carries the fields of a partial profile update.
type ProfilePatch struct {
	Default     *bool   `json:"default,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ImportRequest is a profile file upload. Nil optional fields are not sent,
// which lets the server derive them from the file name.
type ImportRequest struct {
	File           io.Reader
	FileName       string
	AllowOverwrite bool
	Name           *string
	DisplayName    *string
	Description    *string
}

// ListProfiles fetches all profiles of the slicer.
func (c *Client) ListProfiles(ctx context.Context) (map[string]ProfileRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, profilesPath, nil)
	if err != nil {
		return nil, err
	}
	profiles := make(map[string]ProfileRecord)
	if err := c.do(req, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// DeleteProfile deletes the profile at resource.
func (c *Client) DeleteProfile(ctx context.Context, resource string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, resource, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// PatchProfile applies patch to the profile at resource.
func (c *Client) PatchProfile(ctx context.Context, resource string, patch ProfilePatch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPatch, resource, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	return c.do(req, nil)
}

// ImportProfile uploads a profile file as multipart form data.
func (c *Client) ImportProfile(ctx context.Context, in ImportRequest) (*ProfileRecord, error) {
	if in.File == nil {
		return nil, fmt.Errorf("import %q: no file", in.FileName)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("allowOverwrite", strconv.FormatBool(in.AllowOverwrite)); err != nil {
		return nil, err
	}
	optional := []struct {
		name  string
		value *string
	}{
		{"name", in.Name},
		{"displayName", in.DisplayName},
		{"description", in.Description},
	}
	for _, f := range optional {
		if f.value == nil {
			continue
		}
		if err := mw.WriteField(f.name, *f.value); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("file", in.FileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, in.File); err != nil {
		return nil, fmt.Errorf("read %q: %w", in.FileName, err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, importPath, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var created ProfileRecord
	if err := c.do(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

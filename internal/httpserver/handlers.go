package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"preprint/internal/octoprint"
	"preprint/internal/profiles"
	"preprint/internal/store"
)

const maxUploadSize = 32 << 20

// handleHealth handles GET /health
func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	count := 0
	if list, err := s.store.List(); err == nil {
		count = len(list)
	}
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Profiles: count,
	})
}

// resourceURL builds the absolute URL of a profile from the request host.
func resourceURL(r *http.Request, key string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return fmt.Sprintf("%s://%s%s/%s", scheme, r.Host, profilesRoute, url.PathEscape(key))
}

func toRecord(r *http.Request, p store.Profile) octoprint.ProfileRecord {
	return octoprint.ProfileRecord{
		Key:         p.Key,
		DisplayName: p.DisplayName,
		Description: p.Description,
		Default:     p.Default,
		Resource:    resourceURL(r, p.Key),
	}
}

// storeError maps store errors to HTTP status codes.
func storeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidName):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[HTTP] store error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// handleListProfiles handles GET /api/slicing/<slicer>/profiles
func (s *HTTPServer) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List()
	if err != nil {
		storeError(w, err)
		return
	}
	out := make(map[string]octoprint.ProfileRecord, len(list))
	for _, p := range list {
		rec := toRecord(r, p)
		rec.Key = ""
		out[p.Key] = rec
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGetProfile handles GET /api/slicing/<slicer>/profiles/<key>
func (s *HTTPServer) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.PathValue("key"))
	if err != nil {
		storeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toRecord(r, p))
}

// handleDeleteProfile handles DELETE /api/slicing/<slicer>/profiles/<key>
func (s *HTTPServer) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := s.store.Delete(key); err != nil {
		storeError(w, err)
		return
	}
	s.hub.broadcast(octoprint.EventSlicingProfilesChanged, map[string]string{"action": "deleted", "key": key})
	w.WriteHeader(http.StatusNoContent)
}

// handlePatchProfile handles PATCH /api/slicing/<slicer>/profiles/<key>
func (s *HTTPServer) handlePatchProfile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req PatchProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.DisplayName != nil || req.Description != nil {
		if _, err := s.store.Update(key, req.DisplayName, req.Description); err != nil {
			storeError(w, err)
			return
		}
	}
	if req.Default != nil && *req.Default {
		if err := s.store.SetDefault(key); err != nil {
			storeError(w, err)
			return
		}
	}

	p, err := s.store.Get(key)
	if err != nil {
		storeError(w, err)
		return
	}
	s.hub.broadcast(octoprint.EventSlicingProfilesChanged, map[string]string{"action": "updated", "key": key})
	respondJSON(w, http.StatusOK, toRecord(r, p))
}

// handleImportProfile handles POST /plugin/<slicer>/import (multipart)
func (s *HTTPServer) handleImportProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "field 'file' is required")
		return
	}
	defer file.Close()

	fileName := filepath.Base(header.Filename)
	base := profiles.TrimExtension(fileName)

	key := profiles.SanitizeName(base)
	if name, ok := formValue(r, "name"); ok {
		if strings.ContainsAny(name, `/\`) {
			respondError(w, http.StatusBadRequest, "name must not contain / or \\")
			return
		}
		key = profiles.SanitizeName(name)
	}
	displayName := base
	if v, ok := formValue(r, "displayName"); ok {
		displayName = v
	}
	description := fmt.Sprintf("Imported from %s on %s", fileName, time.Now().Format(profiles.DescriptionDateLayout))
	if v, ok := formValue(r, "description"); ok {
		description = v
	}

	allowOverwrite := true
	if v, ok := formValue(r, "allowOverwrite"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "allowOverwrite must be a boolean")
			return
		}
		allowOverwrite = b
	}

	p, err := s.store.Import(store.Profile{
		Key:         key,
		DisplayName: displayName,
		Description: description,
	}, file, allowOverwrite)
	if err != nil {
		storeError(w, err)
		return
	}

	s.hub.broadcast(octoprint.EventSlicingProfilesChanged, map[string]string{"action": "imported", "key": p.Key})
	rec := toRecord(r, p)
	w.Header().Set("Location", rec.Resource)
	respondJSON(w, http.StatusCreated, rec)
}

func formValue(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// handleUtilTest handles POST /api/util/test for the "path" command
func (s *HTTPServer) handleUtilTest(w http.ResponseWriter, r *http.Request) {
	var req UtilTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Command != "path" {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("unsupported command %q", req.Command))
		return
	}
	if req.Path == "" {
		respondError(w, http.StatusBadRequest, "field 'path' is required")
		return
	}
	respondJSON(w, http.StatusOK, testPath(req))
}

// testPath checks existence, type and access rights of req.Path for the
// server process.
func testPath(req UtilTestRequest) UtilTestResponse {
	var res UtilTestResponse
	info, err := os.Stat(req.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[HTTP] stat %s: %v", req.Path, err)
		}
		return res
	}
	res.Exists = true

	switch req.CheckType {
	case "file":
		res.TypeOK = info.Mode().IsRegular()
	case "dir":
		res.TypeOK = info.IsDir()
	default:
		res.TypeOK = true
	}

	res.Access = canAccess(req.Path, info, req.CheckAccess)

	res.Result = res.Exists && res.TypeOK && res.Access
	return res
}

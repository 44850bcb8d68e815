// Package store keeps slicing profiles in a folder: one .ini body per
// profile, a .yaml sidecar with its metadata and default.yaml naming the
// default profile.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound    = errors.New("profile not found")
	ErrExists      = errors.New("profile already exists")
	ErrInvalidName = errors.New("invalid profile name")
)

const (
	bodyExt     = ".ini"
	metaExt     = ".yaml"
	defaultFile = "default.yaml"
)

// Profile is a stored profile's metadata.
type Profile struct {
	Key         string `yaml:"-" json:"key"`
	DisplayName string `yaml:"displayName" json:"displayName"`
	Description string `yaml:"description" json:"description"`
	Default     bool   `yaml:"-" json:"default"`
}

type defaultDoc struct {
	Default string `yaml:"default"`
}

// Store is safe for concurrent use.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// Open uses dir as the profile folder, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// ValidateKey rejects keys that could escape the profile folder.
func ValidateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, key)
	}
	if key+metaExt == defaultFile {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, key)
	}
	return nil
}

// BodyPath returns the path of the profile's .ini file.
func (s *Store) BodyPath(key string) string {
	return filepath.Join(s.dir, key+bodyExt)
}

func (s *Store) metaPath(key string) string {
	return filepath.Join(s.dir, key+metaExt)
}

// List returns all profiles sorted by key.
func (s *Store) List() ([]Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	def := s.readDefault()

	var out []Profile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != bodyExt {
			continue
		}
		key := strings.TrimSuffix(e.Name(), bodyExt)
		p, err := s.readMeta(key)
		if err != nil {
			return nil, err
		}
		p.Default = key == def
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Get returns one profile.
func (s *Store) Get(key string) (Profile, error) {
	if err := ValidateKey(key); err != nil {
		return Profile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getLocked(key)
}

func (s *Store) getLocked(key string) (Profile, error) {
	if _, err := os.Stat(s.BodyPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Profile{}, err
	}
	p, err := s.readMeta(key)
	if err != nil {
		return Profile{}, err
	}
	p.Default = s.readDefault() == key
	return p, nil
}

// readMeta loads the sidecar; a missing sidecar falls back to the key.
func (s *Store) readMeta(key string) (Profile, error) {
	p := Profile{Key: key, DisplayName: key}
	data, err := os.ReadFile(s.metaPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return Profile{}, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse %s: %w", s.metaPath(key), err)
	}
	p.Key = key
	return p, nil
}

func (s *Store) writeMeta(p Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(p.Key), data, 0644)
}

func (s *Store) readDefault() string {
	data, err := os.ReadFile(filepath.Join(s.dir, defaultFile))
	if err != nil {
		return ""
	}
	var doc defaultDoc
	if yaml.Unmarshal(data, &doc) != nil {
		return ""
	}
	return doc.Default
}

func (s *Store) writeDefault(key string) error {
	data, err := yaml.Marshal(defaultDoc{Default: key})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, defaultFile), data, 0644)
}

// Import stores a profile body under key. Without allowOverwrite an
// existing profile is left alone and ErrExists returned.
func (s *Store) Import(p Profile, body io.Reader, allowOverwrite bool) (Profile, error) {
	if err := ValidateKey(p.Key); err != nil {
		return Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.BodyPath(p.Key)
	if _, err := os.Stat(path); err == nil && !allowOverwrite {
		return Profile{}, fmt.Errorf("%w: %s", ErrExists, p.Key)
	}

	tmp, err := os.CreateTemp(s.dir, ".import-*")
	if err != nil {
		return Profile{}, err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return Profile{}, fmt.Errorf("write profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Profile{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Profile{}, err
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Key
	}
	if err := s.writeMeta(p); err != nil {
		return Profile{}, err
	}
	p.Default = s.readDefault() == p.Key
	return p, nil
}

// Update changes the metadata fields that are non-nil.
func (s *Store) Update(key string, displayName, description *string) (Profile, error) {
	if err := ValidateKey(key); err != nil {
		return Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.getLocked(key)
	if err != nil {
		return Profile{}, err
	}
	if displayName != nil {
		p.DisplayName = *displayName
	}
	if description != nil {
		p.Description = *description
	}
	if err := s.writeMeta(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// SetDefault makes key the only default profile.
func (s *Store) SetDefault(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getLocked(key); err != nil {
		return err
	}
	return s.writeDefault(key)
}

// SeedDefault makes key the default when no default is recorded yet. It
// reports whether the default changed. A recorded default always wins.
func (s *Store) SeedDefault(key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	if err := ValidateKey(key); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readDefault() != "" {
		return false, nil
	}
	if _, err := s.getLocked(key); err != nil {
		return false, err
	}
	return true, s.writeDefault(key)
}

// Default returns the default profile key, or "" when none is set.
func (s *Store) Default() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readDefault()
}

// Delete removes a profile. Deleting the default clears the default.
func (s *Store) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.BodyPath(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return err
	}
	if err := os.Remove(s.metaPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if s.readDefault() == key {
		return s.writeDefault("")
	}
	return nil
}

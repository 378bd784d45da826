// Package configfile persists the gateway configuration document as a YAML
// file and adapts it to the orchestrator's config store contract.
package configfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ValidatorFunc inspects a candidate document before it is accepted. The
// store runs its structural checks first, then every registered validator.
type ValidatorFunc func(doc map[string]any) error

// Store reads and writes a single YAML configuration file. Writes go through
// a temp file and rename so a crash mid-write never leaves a torn document.
type Store struct {
	mu         sync.Mutex
	path       string
	fileMode   os.FileMode
	validators []ValidatorFunc
}

type StoreOption func(*Store)

func WithValidator(fn ValidatorFunc) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.validators = append(s.validators, fn)
		}
	}
}

func WithFileMode(mode os.FileMode) StoreOption {
	return func(s *Store) {
		if mode != 0 {
			s.fileMode = mode
		}
	}
}

func NewStore(path string, options ...StoreOption) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("configfile: path is required")
	}
	store := &Store{path: path, fileMode: 0o600}
	for _, opt := range options {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Snapshot reads the current document. A missing file is an empty document,
// not an error: a fresh gateway install has no configuration yet.
func (s *Store) Snapshot(_ context.Context) (map[string]any, error) {
	if s == nil {
		return nil, fmt.Errorf("configfile: store is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("configfile: read %s: %w", s.path, err)
	}

	doc := map[string]any{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("configfile: parse %s: %w", s.path, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (s *Store) Validate(_ context.Context, doc map[string]any) error {
	if s == nil {
		return fmt.Errorf("configfile: store is not configured")
	}
	if err := validateStructure(doc); err != nil {
		return err
	}
	for _, validator := range s.validators {
		if err := validator(doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Write(_ context.Context, doc map[string]any) error {
	if s == nil {
		return fmt.Errorf("configfile: store is not configured")
	}
	if doc == nil {
		doc = map[string]any{}
	}

	raw, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("configfile: encode configuration: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("configfile: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("configfile: stage write: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("configfile: stage write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("configfile: stage write: %w", err)
	}
	if err := os.Chmod(tmpName, s.fileMode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("configfile: stage write: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("configfile: write %s: %w", s.path, err)
	}
	return nil
}

// validateStructure enforces the shape the orchestrator relies on: a
// providers section, when present, is a mapping of provider id to a mapping.
func validateStructure(doc map[string]any) error {
	if doc == nil {
		return nil
	}
	raw, ok := doc["providers"]
	if !ok || raw == nil {
		return nil
	}
	providers, ok := raw.(map[string]any)
	if !ok {
		return fmt.Errorf("configfile: providers must be a mapping, got %T", raw)
	}
	for id, block := range providers {
		if block == nil {
			continue
		}
		if _, ok := block.(map[string]any); !ok {
			return fmt.Errorf("configfile: provider %q must be a mapping, got %T", id, block)
		}
	}
	return nil
}

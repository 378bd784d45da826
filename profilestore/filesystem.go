// Package profilestore persists credential profiles on the local filesystem,
// one JSON file per profile under the agent directory.
package profilestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-connect/core"
)

const profilesDirName = "credentials"

// Filesystem stores profiles under <agentDir>/credentials/<provider>/<id>.json
// with owner-only permissions. Save is last-write-wins: two concurrent
// exchanges for the same profile id leave whichever write landed last.
type Filesystem struct {
	baseDir string
}

// NewFilesystem uses baseDir when a save or lookup arrives without an agent
// directory. baseDir may be empty if every caller scopes its requests.
func NewFilesystem(baseDir string) *Filesystem {
	return &Filesystem{baseDir: strings.TrimSpace(baseDir)}
}

func (s *Filesystem) Save(_ context.Context, agentDir string, profile core.CredentialProfile) error {
	if s == nil {
		return fmt.Errorf("profilestore: store is not configured")
	}
	if strings.TrimSpace(profile.ID) == "" {
		return fmt.Errorf("profilestore: profile id is required")
	}
	if strings.TrimSpace(profile.ProviderID) == "" {
		return fmt.Errorf("profilestore: provider id is required")
	}

	dir, err := s.providerDir(agentDir, profile.ProviderID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("profilestore: create %s: %w", dir, err)
	}

	raw, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return fmt.Errorf("profilestore: encode profile %s: %w", profile.ID, err)
	}

	path := filepath.Join(dir, profile.ID+".json")
	tmp, err := os.CreateTemp(dir, profile.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("profilestore: stage profile write: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("profilestore: stage profile write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("profilestore: stage profile write: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("profilestore: stage profile write: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("profilestore: write profile %s: %w", profile.ID, err)
	}
	return nil
}

func (s *Filesystem) Exists(_ context.Context, agentDir string, providerID string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("profilestore: store is not configured")
	}
	dir, err := s.providerDir(agentDir, providerID)
	if err != nil {
		return false, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("profilestore: read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			return true, nil
		}
	}
	return false, nil
}

func (s *Filesystem) providerDir(agentDir string, providerID string) (string, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return "", fmt.Errorf("profilestore: provider id is required")
	}
	root := strings.TrimSpace(agentDir)
	if root == "" {
		root = s.baseDir
	}
	if root == "" {
		return "", fmt.Errorf("profilestore: agent directory is required")
	}
	return filepath.Join(root, profilesDirName, providerID), nil
}

var _ core.ProfileStore = (*Filesystem)(nil)

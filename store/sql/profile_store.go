package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-connect/core"
)

// ProfileStore persists credential profiles in a relational table. Save is an
// upsert keyed on the profile id: concurrent exchanges for the same profile
// resolve to whichever write landed last.
type ProfileStore struct {
	db   *bun.DB
	repo repository.Repository[*profileRecord]
}

func (s *ProfileStore) Save(ctx context.Context, agentDir string, profile core.CredentialProfile) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: profile store is not configured")
	}
	if strings.TrimSpace(profile.ID) == "" {
		return fmt.Errorf("sqlstore: profile id is required")
	}
	if strings.TrimSpace(profile.ProviderID) == "" {
		return fmt.Errorf("sqlstore: provider id is required")
	}

	record := newProfileRecord(strings.TrimSpace(agentDir), profile, time.Now().UTC())
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("agent_dir = EXCLUDED.agent_dir").
		Set("provider_id = EXCLUDED.provider_id").
		Set("mode = EXCLUDED.mode").
		Set("secret = EXCLUDED.secret").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: save profile %s: %w", profile.ID, err)
	}
	return nil
}

func (s *ProfileStore) Exists(ctx context.Context, agentDir string, providerID string) (bool, error) {
	if s == nil || s.repo == nil {
		return false, fmt.Errorf("sqlstore: profile store is not configured")
	}
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return false, fmt.Errorf("sqlstore: provider id is required")
	}

	criteria := []repository.SelectCriteria{
		repository.SelectBy("provider_id", "=", providerID),
		repository.SelectPaginate(1, 0),
	}
	if agentDir = strings.TrimSpace(agentDir); agentDir != "" {
		criteria = append(criteria, repository.SelectBy("agent_dir", "=", agentDir))
	}

	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return false, fmt.Errorf("sqlstore: lookup profiles for %q: %w", providerID, err)
	}
	return len(records) > 0, nil
}

// ListByProvider returns the stored profiles for a provider, newest first.
func (s *ProfileStore) ListByProvider(ctx context.Context, agentDir string, providerID string) ([]core.CredentialProfile, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: profile store is not configured")
	}
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return nil, fmt.Errorf("sqlstore: provider id is required")
	}

	criteria := []repository.SelectCriteria{
		repository.SelectBy("provider_id", "=", providerID),
		repository.OrderBy("updated_at DESC"),
	}
	if agentDir = strings.TrimSpace(agentDir); agentDir != "" {
		criteria = append(criteria, repository.SelectBy("agent_dir", "=", agentDir))
	}

	records, _, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list profiles for %q: %w", providerID, err)
	}
	profiles := make([]core.CredentialProfile, 0, len(records))
	for _, record := range records {
		profiles = append(profiles, record.toDomain())
	}
	return profiles, nil
}

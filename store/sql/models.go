package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-connect/core"
)

type profileRecord struct {
	bun.BaseModel `bun:"table:credential_profiles,alias:cp"`

	ID         string         `bun:"id,pk"`
	AgentDir   string         `bun:"agent_dir,notnull,default:''"`
	ProviderID string         `bun:"provider_id,notnull"`
	Mode       string         `bun:"mode,notnull"`
	Secret     map[string]any `bun:"secret,type:jsonb,notnull"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newProfileRecord(agentDir string, profile core.CredentialProfile, now time.Time) *profileRecord {
	secret := profile.Secret
	if secret == nil {
		secret = map[string]any{}
	}
	return &profileRecord{
		ID:         profile.ID,
		AgentDir:   agentDir,
		ProviderID: profile.ProviderID,
		Mode:       string(profile.Mode),
		Secret:     secret,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (r *profileRecord) toDomain() core.CredentialProfile {
	if r == nil {
		return core.CredentialProfile{}
	}
	return core.CredentialProfile{
		ID:         r.ID,
		ProviderID: r.ProviderID,
		Mode:       core.CredentialMode(r.Mode),
		Secret:     r.Secret,
	}
}

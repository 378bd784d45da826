package sqlstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// EnsureSchema creates the credential profile table when it does not exist.
// Deployments with managed migrations can skip this and own the DDL.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return fmt.Errorf("sqlstore: bun db is required")
	}
	if _, err := db.NewCreateTable().
		Model((*profileRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create credential_profiles: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*profileRecord)(nil)).
		Index("idx_credential_profiles_provider").
		Column("provider_id", "agent_dir").
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: index credential_profiles: %w", err)
	}
	return nil
}

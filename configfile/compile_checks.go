package configfile

import "github.com/goliatone/go-connect/core"

var (
	_ core.ConfigStore = (*Store)(nil)
	_ core.Migrator    = LegacyMigrator{}
)

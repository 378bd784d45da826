package sqlstore

import "github.com/goliatone/go-connect/core"

var _ core.ProfileStore = (*ProfileStore)(nil)

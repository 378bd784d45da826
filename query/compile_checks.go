package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-connect/core"
)

var (
	_ gocmd.Querier[ListProvidersMessage, []core.ProviderSummary] = (*ListProvidersQuery)(nil)
)

package query

import (
	"github.com/goliatone/go-connect/core"
)

const (
	TypeListProviders = "connect.query.providers.list"
)

type ListProvidersMessage struct {
	Request core.ListProvidersRequest
}

func (ListProvidersMessage) Type() string { return TypeListProviders }

// Validate always passes: an empty agent dir means "no profile scope" and the
// listing still renders.
func (ListProvidersMessage) Validate() error { return nil }

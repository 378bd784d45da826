package query

import (
	"context"

	"github.com/goliatone/go-connect/core"
)

type ProviderReader interface {
	ListProviders(ctx context.Context, req core.ListProvidersRequest) ([]core.ProviderSummary, error)
}

type ListProvidersQuery struct {
	reader ProviderReader
}

func NewListProvidersQuery(reader ProviderReader) *ListProvidersQuery {
	return &ListProvidersQuery{reader: reader}
}

func (q *ListProvidersQuery) Query(ctx context.Context, msg ListProvidersMessage) ([]core.ProviderSummary, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: provider reader is required")
	}
	return q.reader.ListProviders(ctx, msg.Request)
}

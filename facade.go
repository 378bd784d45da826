package connect

import (
	"fmt"
	"net/http"

	connectcommand "github.com/goliatone/go-connect/command"
	"github.com/goliatone/go-connect/core"
	"github.com/goliatone/go-connect/inbound"
	connectquery "github.com/goliatone/go-connect/query"
)

var _ CommandQueryService = (*core.Service)(nil)

// CommandQueryService is the slice of the orchestrator the facade wires into
// command and query handlers. *core.Service satisfies it.
type CommandQueryService interface {
	connectcommand.MutatingService
	connectquery.ProviderReader
	inbound.CallbackService
}

type Commands struct {
	StartOAuth       *connectcommand.StartOAuthCommand
	CompleteCallback *connectcommand.CompleteCallbackCommand
	SetAPIKey        *connectcommand.SetAPIKeyCommand
}

type Queries struct {
	ListProviders *connectquery.ListProvidersQuery
}

// Facade bundles the dispatchable handlers and the HTTP callback surface
// around one orchestrator instance.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
	callback *inbound.CallbackHandler
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("connect: command/query service is required")
	}
	return &Facade{
		service: service,
		commands: Commands{
			StartOAuth:       connectcommand.NewStartOAuthCommand(service),
			CompleteCallback: connectcommand.NewCompleteCallbackCommand(service),
			SetAPIKey:        connectcommand.NewSetAPIKeyCommand(service),
		},
		queries: Queries{
			ListProviders: connectquery.NewListProvidersQuery(service),
		},
		callback: inbound.NewCallbackHandler(service),
	}, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// CallbackHandler is the HTTP responder for the provider redirect; mount it
// at the service's callback path.
func (f *Facade) CallbackHandler() http.Handler {
	if f == nil {
		return http.NotFoundHandler()
	}
	return f.callback
}

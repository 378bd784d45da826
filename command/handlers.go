package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-connect/core"
)

type MutatingService interface {
	StartOAuth(ctx context.Context, req core.StartOAuthRequest) (core.StartOAuthResponse, error)
	CompleteCallback(ctx context.Context, req core.CallbackRequest) core.CallbackRedirect
	SetAPIKey(ctx context.Context, req core.SetAPIKeyRequest) (core.SetAPIKeyResponse, error)
}

type StartOAuthCommand struct {
	service MutatingService
}

func NewStartOAuthCommand(service MutatingService) *StartOAuthCommand {
	return &StartOAuthCommand{service: service}
}

func (c *StartOAuthCommand) Execute(ctx context.Context, msg StartOAuthMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: oauth service is required")
	}
	out, err := c.service.StartOAuth(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CompleteCallbackCommand struct {
	service MutatingService
}

func NewCompleteCallbackCommand(service MutatingService) *CompleteCallbackCommand {
	return &CompleteCallbackCommand{service: service}
}

// Execute never fails with a flow error: the redirect it stores is the whole
// outcome, success and failure alike.
func (c *CompleteCallbackCommand) Execute(ctx context.Context, msg CompleteCallbackMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: callback service is required")
	}
	storeResult(ctx, c.service.CompleteCallback(ctx, msg.Request))
	return nil
}

type SetAPIKeyCommand struct {
	service MutatingService
}

func NewSetAPIKeyCommand(service MutatingService) *SetAPIKeyCommand {
	return &SetAPIKeyCommand{service: service}
}

func (c *SetAPIKeyCommand) Execute(ctx context.Context, msg SetAPIKeyMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: api key service is required")
	}
	out, err := c.service.SetAPIKey(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}

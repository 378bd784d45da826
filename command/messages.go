package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-connect/core"
)

const (
	TypeStartOAuth       = "connect.command.oauth.start"
	TypeCompleteCallback = "connect.command.callback.complete"
	TypeSetAPIKey        = "connect.command.apikey.set"
)

type StartOAuthMessage struct {
	Request core.StartOAuthRequest
}

func (StartOAuthMessage) Type() string { return TypeStartOAuth }

func (m StartOAuthMessage) Validate() error {
	if strings.TrimSpace(m.Request.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	if strings.TrimSpace(m.Request.RedirectBase) == "" {
		return fmt.Errorf("command: redirect base url is required")
	}
	return nil
}

type CompleteCallbackMessage struct {
	Request core.CallbackRequest
}

func (CompleteCallbackMessage) Type() string { return TypeCompleteCallback }

// Validate accepts every callback shape: a malformed callback still has to
// produce a redirect, so rejection happens inside the service, never here.
func (CompleteCallbackMessage) Validate() error { return nil }

type SetAPIKeyMessage struct {
	Request core.SetAPIKeyRequest
}

func (SetAPIKeyMessage) Type() string { return TypeSetAPIKey }

func (m SetAPIKeyMessage) Validate() error {
	if strings.TrimSpace(m.Request.ProviderID) == "" {
		return fmt.Errorf("command: provider id is required")
	}
	if strings.TrimSpace(m.Request.Key) == "" {
		return fmt.Errorf("command: api key is required")
	}
	return nil
}

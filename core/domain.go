package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrProviderNotFound  = errors.New("core: provider not found")
	ErrMethodNotFound    = errors.New("core: auth method not found")
	ErrAuthStateNotFound = errors.New("core: authorization state not found")
)

// AuthKind tags one credential-acquisition mechanism offered by a provider.
type AuthKind string

const (
	AuthKindOAuth  AuthKind = "oauth"
	AuthKindAPIKey AuthKind = "api_key"
	AuthKindToken  AuthKind = "token"
)

func (k AuthKind) Valid() bool {
	switch k {
	case AuthKindOAuth, AuthKindAPIKey, AuthKindToken:
		return true
	}
	return false
}

// CredentialMode marks how a persisted secret is meant to be presented to the
// provider. It is derived from the AuthKind of the method that produced it.
type CredentialMode string

const (
	CredentialModeOAuth  CredentialMode = "oauth"
	CredentialModeAPIKey CredentialMode = "api_key"
	CredentialModeToken  CredentialMode = "token"
)

// CredentialMode maps the method kind onto the mode tag written into
// configuration and credential profiles.
func (k AuthKind) CredentialMode() CredentialMode {
	switch k {
	case AuthKindToken:
		return CredentialModeToken
	case AuthKindOAuth:
		return CredentialModeOAuth
	default:
		return CredentialModeAPIKey
	}
}

// StartAuthRequest is handed to an oauth method's start capability.
type StartAuthRequest struct {
	Config       map[string]any
	AgentDir     string
	WorkspaceDir string
	State        string
	CallbackURL  string
}

type StartAuthResponse struct {
	URL string
}

// ExchangeRequest is handed to an oauth method's exchange capability once the
// provider redirects back with an authorization code.
type ExchangeRequest struct {
	Config       map[string]any
	AgentDir     string
	WorkspaceDir string
	State        string
	Code         string
	CallbackURL  string
}

// CredentialProfile is the durable result of a successful exchange. The
// profile store owns it after persistence; this package only produces and
// forwards it.
type CredentialProfile struct {
	ID         string         `json:"id"`
	ProviderID string         `json:"provider_id"`
	Mode       CredentialMode `json:"mode,omitempty"`
	Secret     map[string]any `json:"secret,omitempty"`
}

// ExchangeResult carries everything a provider exchange produced: zero or
// more credential profiles plus an optional partial configuration document to
// merge into the gateway's config.
type ExchangeResult struct {
	Profiles    []CredentialProfile
	ConfigPatch map[string]any
}

type StartCapability func(ctx context.Context, req StartAuthRequest) (StartAuthResponse, error)

type ExchangeCapability func(ctx context.Context, req ExchangeRequest) (ExchangeResult, error)

// AuthMethod is a tagged variant over {oauth, api_key, token}. Only the oauth
// kind carries network capabilities; api_key and token methods are markers
// consumed directly by the API-key handler.
type AuthMethod struct {
	ID    string
	Label string
	Hint  string
	Kind  AuthKind

	// Start and Exchange are set only when Kind == AuthKindOAuth, and even
	// then a descriptor may legitimately omit them (the method is then
	// advertised but unusable, which surfaces as UNAVAILABLE).
	Start    StartCapability
	Exchange ExchangeCapability
}

// ProviderDescriptor is supplied by the plugin collaborator and is read-only
// to this package.
type ProviderDescriptor struct {
	ID            string
	Label         string
	DocsPath      string
	Aliases       []string
	Methods       []AuthMethod
	DefaultConfig map[string]any
}

// AuthorizationState represents one pending OAuth round-trip. The token is
// single-use and time-bounded; consumption deletes the record regardless of
// whether it was still valid at lookup time.
type AuthorizationState struct {
	Token               string
	ProviderID          string
	MethodID            string
	AgentDir            string
	WorkspaceDir        string
	SuccessRedirectBase string
	CreatedAt           time.Time
}

func (s AuthorizationState) Validate() error {
	if strings.TrimSpace(s.ProviderID) == "" {
		return fmt.Errorf("core: authorization state provider id is required")
	}
	return nil
}

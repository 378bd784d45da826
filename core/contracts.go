package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// ProviderSource is the plugin collaborator: it supplies the live list of
// provider descriptors on every call. Descriptors are never cached here, so a
// provider removed between start and callback yields not-found at callback
// time.
type ProviderSource interface {
	Providers(ctx context.Context) ([]ProviderDescriptor, error)
}

type ProviderSourceFunc func(ctx context.Context) ([]ProviderDescriptor, error)

func (fn ProviderSourceFunc) Providers(ctx context.Context) ([]ProviderDescriptor, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

// ConfigStore is the durable gateway configuration collaborator. Snapshot
// reads the persisted document, Validate runs the schema+plugin validator,
// and Write persists a full document durably.
type ConfigStore interface {
	Snapshot(ctx context.Context) (map[string]any, error)
	Validate(ctx context.Context, doc map[string]any) error
	Write(ctx context.Context, doc map[string]any) error
}

// Migrator upgrades legacy configuration shapes to the current schema. The
// boolean reports whether a migration was applied; callers use the returned
// document only when it did.
type Migrator interface {
	Migrate(doc map[string]any) (map[string]any, bool)
}

type MigratorFunc func(doc map[string]any) (map[string]any, bool)

func (fn MigratorFunc) Migrate(doc map[string]any) (map[string]any, bool) {
	if fn == nil {
		return doc, false
	}
	return fn(doc)
}

// ProfileStore persists credential profiles scoped to an agent directory.
// Writes are independent of the configuration write and are never rolled
// back; a stray profile with no matching config entry is harmless.
type ProfileStore interface {
	Save(ctx context.Context, agentDir string, profile CredentialProfile) error
	Exists(ctx context.Context, agentDir string, providerID string) (bool, error)
}

// AuthStateStore holds short-lived authorization records keyed by an opaque
// token. Create generates the token; Consume deletes on lookup.
type AuthStateStore interface {
	Create(ctx context.Context, state AuthorizationState) (string, error)
	Consume(ctx context.Context, token string) (AuthorizationState, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type StartOAuthRequest struct {
	ProviderID          string
	MethodID            string
	RedirectBase        string
	SuccessRedirectBase string
	AgentDir            string
	WorkspaceDir        string
}

type StartOAuthResponse struct {
	URL   string
	State string
}

// CallbackRequest mirrors the query parameters of the provider redirect.
// RequestBase is the scheme://host the redirect arrived on; it is used to
// reconstruct the callback address handed to the exchange capability.
type CallbackRequest struct {
	State            string
	Code             string
	ErrorCode        string
	ErrorDescription string
	RequestBase      string
}

// CallbackRedirect is the sole outcome of a callback: the endpoint never
// returns a body, only a 302 whose target carries an oauth=success or
// oauth=error&message=... query marker.
type CallbackRedirect struct {
	Location string
	Success  bool
}

type SetAPIKeyRequest struct {
	ProviderID string
	MethodID   string
	Key        string
	AgentDir   string
}

type SetAPIKeyResponse struct {
	OK bool
}

type AuthMethodSummary struct {
	ID    string
	Label string
	Hint  string
	Kind  AuthKind
}

type ProviderSummary struct {
	ID        string
	Label     string
	DocsPath  string
	Methods   []AuthMethodSummary
	Connected bool
}

type ListProvidersRequest struct {
	AgentDir string
}

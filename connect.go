// Package connect re-exports the credential orchestrator's primary surface
// so embedding gateways can depend on a single import path.
package connect

import "github.com/goliatone/go-connect/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type AuthStateStore = core.AuthStateStore
type ProviderSource = core.ProviderSource
type ConfigStore = core.ConfigStore
type ProfileStore = core.ProfileStore
type Migrator = core.Migrator

type ProviderDescriptor = core.ProviderDescriptor
type AuthMethod = core.AuthMethod
type CredentialProfile = core.CredentialProfile

type StartOAuthRequest = core.StartOAuthRequest
type StartOAuthResponse = core.StartOAuthResponse
type CallbackRequest = core.CallbackRequest
type CallbackRedirect = core.CallbackRedirect
type SetAPIKeyRequest = core.SetAPIKeyRequest
type SetAPIKeyResponse = core.SetAPIKeyResponse
type ProviderSummary = core.ProviderSummary

var (
	WithLogger          = core.WithLogger
	WithLoggerProvider  = core.WithLoggerProvider
	WithMetricsRecorder = core.WithMetricsRecorder
	WithErrorFactory    = core.WithErrorFactory
	WithErrorMapper     = core.WithErrorMapper
	WithConfigProvider  = core.WithConfigProvider
	WithOptionsResolver = core.WithOptionsResolver
	WithAuthStateStore  = core.WithAuthStateStore
	WithProviderSource  = core.WithProviderSource
	WithConfigStore     = core.WithConfigStore
	WithProfileStore    = core.WithProfileStore
	WithMigrator        = core.WithMigrator
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

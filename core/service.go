package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/samber/lo"
)

// Service orchestrates provider credential flows: OAuth start/callback and
// direct API-key entry, plus the listing surface the UI builds its provider
// screen from.
type Service struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorFactory    ErrorFactory
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	stateStore      AuthStateStore
	providerSource  ProviderSource
	configStore     ConfigStore
	profileStore    ProfileStore
	migrator        Migrator
}

type ServiceDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorFactory    ErrorFactory
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	StateStore      AuthStateStore
	ProviderSource  ProviderSource
	ConfigStore     ConfigStore
	ProfileStore    ProfileStore
	Migrator        Migrator
}

func NewService(cfg Config, options ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("connect", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("connect"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if builder.stateStore == nil {
		builder.stateStore = NewMemoryAuthStateStoreWithLimits(
			finalConfig.stateTTL(),
			finalConfig.State.MaxEntries,
		)
	}

	return &Service{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorFactory:    builder.errorFactory,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		stateStore:      builder.stateStore,
		providerSource:  builder.providerSource,
		configStore:     builder.configStore,
		profileStore:    builder.profileStore,
		migrator:        builder.migrator,
	}, nil
}

func Setup(cfg Config, options ...Option) (*Service, error) {
	return NewService(cfg, options...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:          s.logger,
		LoggerProvider:  s.loggerProvider,
		MetricsRecorder: s.metricsRecorder,
		ErrorFactory:    s.errorFactory,
		ErrorMapper:     s.errorMapper,
		ConfigProvider:  s.configProvider,
		OptionsResolver: s.optionsResolver,
		StateStore:      s.stateStore,
		ProviderSource:  s.providerSource,
		ConfigStore:     s.configStore,
		ProfileStore:    s.profileStore,
		Migrator:        s.migrator,
	}
}

// CallbackPath reports the fixed network path the callback responder binds
// to, e.g. "/auth/callback".
func (s *Service) CallbackPath() string {
	if s == nil {
		return ""
	}
	return s.config.callbackPath()
}

// StartOAuth resolves the provider and an oauth-kind method, records a new
// authorization state, and asks the method's start capability for the
// provider authorization URL. The caller redirects the user's browser to the
// returned URL; the state token correlates the eventual callback.
func (s *Service) StartOAuth(ctx context.Context, req StartOAuthRequest) (response StartOAuthResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"provider_id": req.ProviderID,
		"method_id":   req.MethodID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "start_oauth", err, fields)
	}()

	redirectBase := strings.TrimSpace(req.RedirectBase)
	if redirectBase == "" {
		// Never defaulted: the authorization URL must point back at an
		// address the provider can reach, which this process cannot infer.
		err = s.mapError(invalidRequestError("core: redirect base url is required"))
		return StartOAuthResponse{}, err
	}

	provider, method, resolveErr := s.resolveOAuthMethod(ctx, req.ProviderID, req.MethodID)
	if resolveErr != nil {
		err = s.mapError(resolveErr)
		return StartOAuthResponse{}, err
	}
	if method.Start == nil {
		err = s.mapError(unavailableError(fmt.Sprintf(
			"core: method %q on provider %q has no start capability", method.ID, provider.ID,
		)))
		return StartOAuthResponse{}, err
	}

	callbackURL := joinCallbackURL(redirectBase, s.config.callbackPath())

	snapshot, snapErr := s.configSnapshot(ctx)
	if snapErr != nil {
		err = s.mapError(wrapUnavailable(snapErr, "core: read configuration snapshot"))
		return StartOAuthResponse{}, err
	}

	token, createErr := s.stateStore.Create(ctx, AuthorizationState{
		ProviderID:          provider.ID,
		MethodID:            method.ID,
		AgentDir:            strings.TrimSpace(req.AgentDir),
		WorkspaceDir:        strings.TrimSpace(req.WorkspaceDir),
		SuccessRedirectBase: strings.TrimSpace(req.SuccessRedirectBase),
	})
	if createErr != nil {
		err = s.mapError(createErr)
		return StartOAuthResponse{}, err
	}

	started, startErr := method.Start(ctx, StartAuthRequest{
		Config:       snapshot,
		AgentDir:     strings.TrimSpace(req.AgentDir),
		WorkspaceDir: strings.TrimSpace(req.WorkspaceDir),
		State:        token,
		CallbackURL:  callbackURL,
	})
	if startErr != nil {
		err = s.mapError(wrapUnavailable(startErr, "core: provider authorization start failed"))
		return StartOAuthResponse{}, err
	}

	return StartOAuthResponse{URL: started.URL, State: token}, nil
}

// SetAPIKey attaches a directly supplied secret to the provider's
// configuration block. Unlike the OAuth path it performs no schema pre-check
// and no migration: it overlays the in-memory document and writes it, and a
// write failure surfaces synchronously.
func (s *Service) SetAPIKey(ctx context.Context, req SetAPIKeyRequest) (response SetAPIKeyResponse, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"provider_id": req.ProviderID,
		"method_id":   req.MethodID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, "set_api_key", err, fields)
	}()

	key := strings.TrimSpace(req.Key)
	if key == "" {
		err = s.mapError(invalidRequestError("core: api key is required"))
		return SetAPIKeyResponse{}, err
	}

	providers, listErr := s.listDescriptors(ctx)
	if listErr != nil {
		err = s.mapError(listErr)
		return SetAPIKeyResponse{}, err
	}
	provider, ok := MatchProvider(providers, req.ProviderID)
	if !ok {
		err = s.mapError(invalidRequestError(fmt.Sprintf("core: unknown provider %q", req.ProviderID)))
		return SetAPIKeyResponse{}, err
	}
	method, ok := PickMethod(provider, []AuthKind{AuthKindAPIKey, AuthKindToken}, req.MethodID)
	if !ok {
		err = s.mapError(invalidRequestError(fmt.Sprintf(
			"core: no api key or token method on provider %q", provider.ID,
		)))
		return SetAPIKeyResponse{}, err
	}

	if s.configStore == nil {
		err = s.mapError(unavailableError("core: config store is not configured"))
		return SetAPIKeyResponse{}, err
	}
	doc, snapErr := s.configStore.Snapshot(ctx)
	if snapErr != nil {
		err = s.mapError(wrapUnavailable(snapErr, "core: read configuration"))
		return SetAPIKeyResponse{}, err
	}

	base := providerConfigBlock(doc, provider.ID)
	if base == nil {
		base = provider.DefaultConfig
	}
	if !hasAttachableConfig(base) {
		err = s.mapError(unavailableError(fmt.Sprintf(
			"core: provider %q has no configuration to attach a key to", provider.ID,
		)))
		return SetAPIKeyResponse{}, err
	}

	block := copyAnyMap(base)
	block["api_key"] = key
	block["auth_mode"] = string(method.Kind.CredentialMode())

	providersDoc, _ := doc["providers"].(map[string]any)
	providersDoc = copyAnyMap(providersDoc)
	providersDoc[provider.ID] = block
	doc = copyAnyMap(doc)
	doc["providers"] = providersDoc

	if writeErr := s.configStore.Write(ctx, doc); writeErr != nil {
		err = s.mapError(wrapUnavailable(writeErr, "core: write configuration"))
		return SetAPIKeyResponse{}, err
	}

	return SetAPIKeyResponse{OK: true}, nil
}

// ListProviders projects the live descriptor list for the UI. The connected
// flag is best effort: profile store failures degrade to "not connected"
// rather than failing the listing.
func (s *Service) ListProviders(ctx context.Context, req ListProvidersRequest) (summaries []ProviderSummary, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observeOperation(ctx, startedAt, "list_providers", err, map[string]any{})
	}()

	providers, listErr := s.listDescriptors(ctx)
	if listErr != nil {
		err = s.mapError(listErr)
		return nil, err
	}

	var doc map[string]any
	if s.configStore != nil {
		if snapshot, snapErr := s.configStore.Snapshot(ctx); snapErr == nil {
			doc = snapshot
		}
	}

	summaries = make([]ProviderSummary, 0, len(providers))
	for _, provider := range providers {
		summaries = append(summaries, ProviderSummary{
			ID:       provider.ID,
			Label:    provider.Label,
			DocsPath: provider.DocsPath,
			Methods: lo.Map(provider.Methods, func(method AuthMethod, _ int) AuthMethodSummary {
				return AuthMethodSummary{
					ID:    method.ID,
					Label: method.Label,
					Hint:  method.Hint,
					Kind:  method.Kind,
				}
			}),
			Connected: s.providerConnected(ctx, req.AgentDir, provider.ID, doc),
		})
	}
	return summaries, nil
}

func (s *Service) providerConnected(ctx context.Context, agentDir string, providerID string, doc map[string]any) bool {
	if s.profileStore != nil {
		exists, err := s.profileStore.Exists(ctx, strings.TrimSpace(agentDir), providerID)
		if err == nil && exists {
			return true
		}
		// Store failures are swallowed: a broken profile store reads as
		// "not connected", never as a listing failure.
	}
	block := providerConfigBlock(doc, providerID)
	if block == nil {
		return false
	}
	if key, _ := block["api_key"].(string); strings.TrimSpace(key) != "" {
		return true
	}
	if mode, _ := block["auth_mode"].(string); strings.TrimSpace(mode) != "" {
		return true
	}
	return false
}

func (s *Service) resolveOAuthMethod(ctx context.Context, rawProviderID string, rawMethodID string) (ProviderDescriptor, AuthMethod, error) {
	providers, err := s.listDescriptors(ctx)
	if err != nil {
		return ProviderDescriptor{}, AuthMethod{}, err
	}
	provider, ok := MatchProvider(providers, rawProviderID)
	if !ok {
		return ProviderDescriptor{}, AuthMethod{}, invalidRequestError(fmt.Sprintf(
			"core: unknown provider %q", rawProviderID,
		))
	}
	method, ok := PickMethod(provider, []AuthKind{AuthKindOAuth}, rawMethodID)
	if !ok {
		return ProviderDescriptor{}, AuthMethod{}, invalidRequestError(fmt.Sprintf(
			"core: no oauth method on provider %q", provider.ID,
		))
	}
	return provider, method, nil
}

func (s *Service) listDescriptors(ctx context.Context) ([]ProviderDescriptor, error) {
	if s == nil || s.providerSource == nil {
		return nil, unavailableError("core: provider source is not configured")
	}
	providers, err := s.providerSource.Providers(ctx)
	if err != nil {
		return nil, wrapUnavailable(err, "core: list providers")
	}
	return providers, nil
}

func (s *Service) configSnapshot(ctx context.Context) (map[string]any, error) {
	if s == nil || s.configStore == nil {
		return map[string]any{}, nil
	}
	doc, err := s.configStore.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func providerConfigBlock(doc map[string]any, providerID string) map[string]any {
	if doc == nil {
		return nil
	}
	providersDoc, _ := doc["providers"].(map[string]any)
	if providersDoc == nil {
		return nil
	}
	block, _ := providersDoc[providerID].(map[string]any)
	return block
}

func hasAttachableConfig(block map[string]any) bool {
	if block == nil {
		return false
	}
	if base, _ := block["base_url"].(string); strings.TrimSpace(base) != "" {
		return true
	}
	if models, ok := block["models"]; ok {
		switch typed := models.(type) {
		case []any:
			return len(typed) > 0
		case map[string]any:
			return len(typed) > 0
		}
	}
	return false
}

func joinCallbackURL(base string, path string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + path
}

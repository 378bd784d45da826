package core

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompleteCallback receives the provider redirect and drives the persistence
// sequence. It never fails outward: every outcome is a redirect whose target
// carries an oauth=success or oauth=error&message=... query marker.
func (s *Service) CompleteCallback(ctx context.Context, req CallbackRequest) CallbackRedirect {
	startedAt := time.Now().UTC()
	var err error
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "complete_callback", err, fields)
	}()

	// Provider-initiated failure. The state token is deliberately left
	// unconsumed so an immediate retry does not burn the single-use token.
	if strings.TrimSpace(req.ErrorCode) != "" {
		message := strings.TrimSpace(req.ErrorDescription)
		if message == "" {
			message = strings.TrimSpace(req.ErrorCode)
		}
		err = unavailableError("core: provider rejected the authorization: " + message)
		return s.errorRedirect("", message)
	}

	if strings.TrimSpace(req.State) == "" || strings.TrimSpace(req.Code) == "" {
		err = invalidRequestError("core: callback is missing state or code")
		return s.errorRedirect("", "missing authorization state or code")
	}

	state, consumeErr := s.consumeState(ctx, req.State)
	if consumeErr != nil {
		err = consumeErr
		return s.errorRedirect("", "authorization request expired or was already used")
	}
	fields["provider_id"] = state.ProviderID
	fields["method_id"] = state.MethodID

	if exchangeErr := s.completeExchange(ctx, state, req); exchangeErr != nil {
		err = s.mapError(exchangeErr)
		return s.errorRedirect(state.SuccessRedirectBase, exchangeErr.Error())
	}

	return s.successRedirect(state.SuccessRedirectBase)
}

func (s *Service) consumeState(ctx context.Context, token string) (AuthorizationState, error) {
	if s == nil || s.stateStore == nil {
		return AuthorizationState{}, unavailableError("core: auth state store is not configured")
	}
	state, err := s.stateStore.Consume(ctx, token)
	if err != nil {
		return AuthorizationState{}, err
	}
	return state, nil
}

func (s *Service) completeExchange(ctx context.Context, state AuthorizationState, req CallbackRequest) error {
	providers, err := s.listDescriptors(ctx)
	if err != nil {
		return err
	}
	// Only identifiers were stored, never descriptors: a provider or method
	// removed or renamed since start time is a not-found here even though it
	// existed when the flow began.
	provider, ok := MatchProvider(providers, state.ProviderID)
	if !ok {
		return invalidRequestError(fmt.Sprintf("core: unknown provider %q", state.ProviderID))
	}
	method, ok := PickMethod(provider, []AuthKind{AuthKindOAuth}, state.MethodID)
	if !ok {
		return invalidRequestError(fmt.Sprintf(
			"core: no oauth method %q on provider %q", state.MethodID, provider.ID,
		))
	}
	if method.Exchange == nil {
		return unavailableError(fmt.Sprintf(
			"core: method %q on provider %q has no exchange capability", method.ID, provider.ID,
		))
	}

	snapshot, snapErr := s.configSnapshot(ctx)
	if snapErr != nil {
		snapshot = map[string]any{}
		s.logWarn(ctx, "configuration snapshot unavailable for exchange", map[string]any{
			"provider_id": provider.ID,
			"error":       snapErr.Error(),
		})
	}

	result, exchangeErr := method.Exchange(ctx, ExchangeRequest{
		Config:       snapshot,
		AgentDir:     state.AgentDir,
		WorkspaceDir: state.WorkspaceDir,
		State:        state.Token,
		Code:         req.Code,
		CallbackURL:  joinCallbackURL(req.RequestBase, s.config.callbackPath()),
	})
	if exchangeErr != nil {
		return wrapUnavailable(exchangeErr, "core: provider code exchange failed")
	}

	profiles := make([]CredentialProfile, 0, len(result.Profiles))
	for _, profile := range result.Profiles {
		if strings.TrimSpace(profile.ID) == "" {
			profile.ID = uuid.NewString()
		}
		if strings.TrimSpace(profile.ProviderID) == "" {
			profile.ProviderID = provider.ID
		}
		if strings.TrimSpace(string(profile.Mode)) == "" {
			profile.Mode = method.Kind.CredentialMode()
		}
		profiles = append(profiles, profile)
	}

	// Profile writes are never rolled back: an orphaned profile is harmless
	// and gets reconciled by a future connection attempt.
	if s.profileStore != nil {
		for _, profile := range profiles {
			if saveErr := s.profileStore.Save(ctx, state.AgentDir, profile); saveErr != nil {
				return wrapUnavailable(saveErr, "core: persist credential profile")
			}
		}
	}

	return s.applyConfigUpdate(ctx, provider.ID, profiles, result.ConfigPatch)
}

// applyConfigUpdate merges the exchange patch and per-profile auth-mode
// markers into a fresh config snapshot, migrates, validates, and writes. An
// invalid pre-existing document or an invalid merge result turns the whole
// config side into a no-op while the flow still reports success; the warning
// log is the only signal.
func (s *Service) applyConfigUpdate(
	ctx context.Context,
	providerID string,
	profiles []CredentialProfile,
	patch map[string]any,
) error {
	if s == nil || s.configStore == nil {
		return nil
	}

	doc, err := s.configStore.Snapshot(ctx)
	if err != nil {
		s.logWarn(ctx, "configuration read failed; credential not reflected in config", map[string]any{
			"provider_id": providerID,
			"error":       err.Error(),
		})
		return nil
	}
	if doc == nil {
		doc = map[string]any{}
	}
	if validateErr := s.configStore.Validate(ctx, doc); validateErr != nil {
		s.logWarn(ctx, "existing configuration is invalid; credential not reflected in config", map[string]any{
			"provider_id": providerID,
			"error":       validateErr.Error(),
		})
		return nil
	}

	merged := doc
	if len(patch) > 0 {
		merged = MergePatch(merged, patch)
	}
	for _, profile := range profiles {
		merged = MergePatch(merged, map[string]any{
			"providers": map[string]any{
				profile.ProviderID: map[string]any{
					"auth_mode": string(profile.Mode),
				},
			},
		})
	}

	if s.migrator != nil {
		if migrated, ok := s.migrator.Migrate(merged); ok {
			merged = migrated
		}
	}

	if validateErr := s.configStore.Validate(ctx, merged); validateErr != nil {
		s.logWarn(ctx, "merged configuration failed validation; config write skipped", map[string]any{
			"provider_id": providerID,
			"error":       validateErr.Error(),
		})
		return nil
	}
	if writeErr := s.configStore.Write(ctx, merged); writeErr != nil {
		return wrapUnavailable(writeErr, "core: write configuration")
	}
	return nil
}

func (s *Service) successRedirect(base string) CallbackRedirect {
	return CallbackRedirect{
		Location: appendQueryMarker(s.redirectBase(base), "oauth=success"),
		Success:  true,
	}
}

func (s *Service) errorRedirect(base string, message string) CallbackRedirect {
	marker := "oauth=error&message=" + url.QueryEscape(strings.TrimSpace(message))
	return CallbackRedirect{
		Location: appendQueryMarker(s.redirectBase(base), marker),
		Success:  false,
	}
}

func (s *Service) redirectBase(base string) string {
	base = strings.TrimSpace(base)
	if base != "" {
		return base
	}
	if s == nil {
		return "/"
	}
	return s.config.defaultRedirect()
}

func appendQueryMarker(base string, marker string) string {
	if strings.Contains(base, "?") {
		return base + "&" + marker
	}
	return base + "?" + marker
}

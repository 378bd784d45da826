package core

import (
	"context"
	"testing"
	"time"
)

func startAuthorization(t *testing.T, svc *Service, providerID string) StartOAuthResponse {
	t.Helper()
	resp, err := svc.StartOAuth(context.Background(), StartOAuthRequest{
		ProviderID:          providerID,
		RedirectBase:        "http://127.0.0.1:4096",
		SuccessRedirectBase: "http://127.0.0.1:4096/settings/providers",
		AgentDir:            "/agents/default",
	})
	if err != nil {
		t.Fatalf("start oauth: %v", err)
	}
	return resp
}

func exchangingProvider(id string, exchange ExchangeCapability) ProviderDescriptor {
	start := func(_ context.Context, req StartAuthRequest) (StartAuthResponse, error) {
		return StartAuthResponse{URL: "https://auth.example.com/authorize?state=" + req.State}, nil
	}
	return ProviderDescriptor{
		ID:      id,
		Methods: []AuthMethod{oauthMethod("oauth", start, exchange)},
	}
}

func TestCompleteCallback_SuccessPersistsProfileAndConfig(t *testing.T) {
	ctx := context.Background()
	profiles := &memoryProfileStore{}
	configStore := newMemoryConfigStore(map[string]any{
		"providers": map[string]any{
			"anthropic": map[string]any{"base_url": "https://api.anthropic.com"},
		},
	})
	var captured ExchangeRequest
	exchange := func(_ context.Context, req ExchangeRequest) (ExchangeResult, error) {
		captured = req
		return ExchangeResult{
			Profiles: []CredentialProfile{{
				Secret: map[string]any{"refresh_token": "rt-1"},
			}},
			ConfigPatch: map[string]any{
				"providers": map[string]any{
					"anthropic": map[string]any{"models": []any{"claude"}},
				},
			},
		}, nil
	}
	svc := newTestService(t,
		WithProviderSource(staticProviders(exchangingProvider("anthropic", exchange))),
		WithProfileStore(profiles),
		WithConfigStore(configStore),
	)

	started := startAuthorization(t, svc, "anthropic")
	redirect := svc.CompleteCallback(ctx, CallbackRequest{
		State:       started.State,
		Code:        "auth-code-1",
		RequestBase: "http://127.0.0.1:4096",
	})
	if !redirect.Success {
		t.Fatalf("expected success redirect, got %q", redirect.Location)
	}
	mustContain(t, redirect.Location, "http://127.0.0.1:4096/settings/providers")
	mustContain(t, redirect.Location, "oauth=success")

	if captured.Code != "auth-code-1" {
		t.Fatalf("expected code handed to exchange, got %q", captured.Code)
	}
	if captured.CallbackURL != "http://127.0.0.1:4096/auth/callback" {
		t.Fatalf("unexpected callback url %q", captured.CallbackURL)
	}

	if len(profiles.saved) != 1 {
		t.Fatalf("expected one persisted profile, got %d", len(profiles.saved))
	}
	saved := profiles.saved[0]
	if saved.ID == "" || saved.ProviderID != "anthropic" || saved.Mode != CredentialModeOAuth {
		t.Fatalf("expected defaults filled in, got %#v", saved)
	}

	block := providerBlock(t, configStore.lastWritten(), "anthropic")
	if block["auth_mode"] != "oauth" {
		t.Fatalf("expected oauth auth mode in config, got %#v", block)
	}
	if block["base_url"] != "https://api.anthropic.com" {
		t.Fatalf("expected existing block to survive merge, got %#v", block)
	}
	models, _ := block["models"].([]any)
	if len(models) != 1 || models[0] != "claude" {
		t.Fatalf("expected exchange patch applied, got %#v", block["models"])
	}
}

func TestCompleteCallback_ProviderErrorDoesNotConsumeState(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t,
		WithProviderSource(staticProviders(exchangingProvider("anthropic", nil))),
		WithConfigStore(newMemoryConfigStore(nil)),
	)
	started := startAuthorization(t, svc, "anthropic")

	redirect := svc.CompleteCallback(ctx, CallbackRequest{
		State:            started.State,
		ErrorCode:        "access_denied",
		ErrorDescription: "user declined consent",
	})
	if redirect.Success {
		t.Fatalf("expected error redirect")
	}
	mustContain(t, redirect.Location, "oauth=error")
	mustContain(t, redirect.Location, "user+declined+consent")

	// The token survives a provider-side failure and stays redeemable.
	if _, err := svc.stateStore.Consume(ctx, started.State); err != nil {
		t.Fatalf("expected state to remain consumable, got %v", err)
	}
}

func TestCompleteCallback_MissingStateOrCode(t *testing.T) {
	svc := newTestService(t,
		WithProviderSource(staticProviders(exchangingProvider("anthropic", nil))),
	)

	for name, req := range map[string]CallbackRequest{
		"no state": {Code: "auth-code"},
		"no code":  {State: "some-state"},
		"empty":    {},
	} {
		redirect := svc.CompleteCallback(context.Background(), req)
		if redirect.Success {
			t.Fatalf("%s: expected error redirect", name)
		}
		mustContain(t, redirect.Location, "oauth=error")
	}
}

func TestCompleteCallback_UnknownOrExpiredStateRedirectsWithError(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	stateStore := NewMemoryAuthStateStore(time.Minute)
	stateStore.now = func() time.Time { return now }
	svc := newTestService(t,
		WithProviderSource(staticProviders(exchangingProvider("anthropic", nil))),
		WithAuthStateStore(stateStore),
	)

	redirect := svc.CompleteCallback(ctx, CallbackRequest{State: "never-issued", Code: "auth-code"})
	if redirect.Success {
		t.Fatalf("expected error redirect for unknown state")
	}
	mustContain(t, redirect.Location, "oauth=error")

	started := startAuthorization(t, svc, "anthropic")
	now = now.Add(2 * time.Minute)
	redirect = svc.CompleteCallback(ctx, CallbackRequest{State: started.State, Code: "auth-code"})
	if redirect.Success {
		t.Fatalf("expected error redirect for expired state")
	}
	mustContain(t, redirect.Location, "oauth=error")
}

func TestCompleteCallback_ExchangeFailureUsesStoredRedirectBase(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t,
		WithProviderSource(staticProviders(
			exchangingProvider("anthropic", failingExchange("token endpoint returned 500")),
		)),
		WithConfigStore(newMemoryConfigStore(nil)),
	)
	started := startAuthorization(t, svc, "anthropic")

	redirect := svc.CompleteCallback(ctx, CallbackRequest{State: started.State, Code: "auth-code"})
	if redirect.Success {
		t.Fatalf("expected error redirect")
	}
	mustContain(t, redirect.Location, "http://127.0.0.1:4096/settings/providers")
	mustContain(t, redirect.Location, "oauth=error")
}

func TestCompleteCallback_InvalidExistingConfigSkipsWriteButSucceeds(t *testing.T) {
	ctx := context.Background()
	profiles := &memoryProfileStore{}
	configStore := newMemoryConfigStore(map[string]any{"providers": "corrupt"})
	configStore.validateFn = func(map[string]any) error { return errTestStore }
	exchange := func(context.Context, ExchangeRequest) (ExchangeResult, error) {
		return ExchangeResult{Profiles: []CredentialProfile{{}}}, nil
	}
	svc := newTestService(t,
		WithProviderSource(staticProviders(exchangingProvider("anthropic", exchange))),
		WithProfileStore(profiles),
		WithConfigStore(configStore),
	)
	started := startAuthorization(t, svc, "anthropic")

	redirect := svc.CompleteCallback(ctx, CallbackRequest{State: started.State, Code: "auth-code"})
	if !redirect.Success {
		t.Fatalf("expected success redirect despite unusable config, got %q", redirect.Location)
	}
	if len(profiles.saved) != 1 {
		t.Fatalf("expected profile still persisted, got %d", len(profiles.saved))
	}
	if configStore.lastWritten() != nil {
		t.Fatalf("expected config write to be skipped")
	}
}

func TestCompleteCallback_ConfigWriteFailureIsAnError(t *testing.T) {
	ctx := context.Background()
	configStore := newMemoryConfigStore(nil)
	configStore.writeErr = errTestWrite
	exchange := func(context.Context, ExchangeRequest) (ExchangeResult, error) {
		return ExchangeResult{Profiles: []CredentialProfile{{}}}, nil
	}
	svc := newTestService(t,
		WithProviderSource(staticProviders(exchangingProvider("anthropic", exchange))),
		WithConfigStore(configStore),
	)
	started := startAuthorization(t, svc, "anthropic")

	redirect := svc.CompleteCallback(ctx, CallbackRequest{State: started.State, Code: "auth-code"})
	if redirect.Success {
		t.Fatalf("expected error redirect when the final write fails")
	}
	mustContain(t, redirect.Location, "oauth=error")
}

func TestCompleteCallback_ProviderRemovedSinceStart(t *testing.T) {
	ctx := context.Background()
	live := []ProviderDescriptor{exchangingProvider("anthropic", nil)}
	source := ProviderSourceFunc(func(context.Context) ([]ProviderDescriptor, error) {
		return live, nil
	})
	svc := newTestService(t, WithProviderSource(source))
	started := startAuthorization(t, svc, "anthropic")

	live = nil
	redirect := svc.CompleteCallback(ctx, CallbackRequest{State: started.State, Code: "auth-code"})
	if redirect.Success {
		t.Fatalf("expected error redirect when the provider disappeared")
	}
	mustContain(t, redirect.Location, "oauth=error")
}

package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-connect/core"
)

type stubMutatingService struct {
	startOAuthFn       func(ctx context.Context, req core.StartOAuthRequest) (core.StartOAuthResponse, error)
	completeCallbackFn func(ctx context.Context, req core.CallbackRequest) core.CallbackRedirect
	setAPIKeyFn        func(ctx context.Context, req core.SetAPIKeyRequest) (core.SetAPIKeyResponse, error)
}

func (s stubMutatingService) StartOAuth(ctx context.Context, req core.StartOAuthRequest) (core.StartOAuthResponse, error) {
	if s.startOAuthFn == nil {
		return core.StartOAuthResponse{}, nil
	}
	return s.startOAuthFn(ctx, req)
}

func (s stubMutatingService) CompleteCallback(ctx context.Context, req core.CallbackRequest) core.CallbackRedirect {
	if s.completeCallbackFn == nil {
		return core.CallbackRedirect{}
	}
	return s.completeCallbackFn(ctx, req)
}

func (s stubMutatingService) SetAPIKey(ctx context.Context, req core.SetAPIKeyRequest) (core.SetAPIKeyResponse, error) {
	if s.setAPIKeyFn == nil {
		return core.SetAPIKeyResponse{}, nil
	}
	return s.setAPIKeyFn(ctx, req)
}

func TestStartOAuthCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.StartOAuthResponse{URL: "https://auth.example.com/authorize", State: "st-1"}
	called := false

	svc := stubMutatingService{
		startOAuthFn: func(_ context.Context, req core.StartOAuthRequest) (core.StartOAuthResponse, error) {
			called = true
			if req.ProviderID != "anthropic" {
				t.Fatalf("expected provider anthropic, got %q", req.ProviderID)
			}
			return expected, nil
		},
	}

	cmd := NewStartOAuthCommand(svc)
	collector := gocmd.NewResult[core.StartOAuthResponse]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, StartOAuthMessage{Request: core.StartOAuthRequest{
		ProviderID:   "anthropic",
		RedirectBase: "http://127.0.0.1:4096",
	}})
	if err != nil {
		t.Fatalf("execute start oauth: %v", err)
	}
	if !called {
		t.Fatalf("expected oauth service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.URL != expected.URL || result.State != expected.State {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestCompleteCallbackCommand_StoresRedirectEvenOnFailure(t *testing.T) {
	svc := stubMutatingService{
		completeCallbackFn: func(_ context.Context, req core.CallbackRequest) core.CallbackRedirect {
			if req.State != "st-1" {
				t.Fatalf("expected state st-1, got %q", req.State)
			}
			return core.CallbackRedirect{Location: "/?oauth=error&message=denied", Success: false}
		},
	}

	cmd := NewCompleteCallbackCommand(svc)
	collector := gocmd.NewResult[core.CallbackRedirect]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, CompleteCallbackMessage{Request: core.CallbackRequest{State: "st-1"}}); err != nil {
		t.Fatalf("execute complete callback: %v", err)
	}
	redirect, ok := collector.Load()
	if !ok {
		t.Fatalf("expected redirect to be stored")
	}
	if redirect.Success || redirect.Location != "/?oauth=error&message=denied" {
		t.Fatalf("unexpected redirect: %#v", redirect)
	}
}

func TestSetAPIKeyCommand_ExecuteDelegates(t *testing.T) {
	called := false
	svc := stubMutatingService{
		setAPIKeyFn: func(_ context.Context, req core.SetAPIKeyRequest) (core.SetAPIKeyResponse, error) {
			called = true
			if req.ProviderID != "openai" || req.Key != "sk-1" {
				t.Fatalf("unexpected payload: %#v", req)
			}
			return core.SetAPIKeyResponse{OK: true}, nil
		},
	}

	cmd := NewSetAPIKeyCommand(svc)
	collector := gocmd.NewResult[core.SetAPIKeyResponse]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	if err := cmd.Execute(ctx, SetAPIKeyMessage{Request: core.SetAPIKeyRequest{
		ProviderID: "openai",
		Key:        "sk-1",
	}}); err != nil {
		t.Fatalf("execute set api key: %v", err)
	}
	if !called {
		t.Fatalf("expected api key service invocation")
	}
	result, ok := collector.Load()
	if !ok || !result.OK {
		t.Fatalf("expected ok result, got %#v ok=%v", result, ok)
	}
}

func TestCommandMessages_Validate(t *testing.T) {
	if err := (StartOAuthMessage{}).Validate(); err == nil {
		t.Fatalf("expected missing provider to fail validation")
	}
	if err := (StartOAuthMessage{Request: core.StartOAuthRequest{ProviderID: "anthropic"}}).Validate(); err == nil {
		t.Fatalf("expected missing redirect base to fail validation")
	}
	if err := (SetAPIKeyMessage{Request: core.SetAPIKeyRequest{ProviderID: "openai"}}).Validate(); err == nil {
		t.Fatalf("expected missing key to fail validation")
	}
	if err := (CompleteCallbackMessage{}).Validate(); err != nil {
		t.Fatalf("callback messages are never rejected up front: %v", err)
	}
	if got := (StartOAuthMessage{}).Type(); got != TypeStartOAuth {
		t.Fatalf("unexpected message type %q", got)
	}
}

func TestCommands_NilServiceDependencyError(t *testing.T) {
	if err := (&StartOAuthCommand{}).Execute(context.Background(), StartOAuthMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
	if err := (&SetAPIKeyCommand{}).Execute(context.Background(), SetAPIKeyMessage{}); err == nil {
		t.Fatalf("expected dependency error")
	}
}

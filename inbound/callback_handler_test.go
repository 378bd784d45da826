package inbound

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-connect/core"
)

type stubCallbackService struct {
	path     string
	redirect core.CallbackRedirect
	captured *core.CallbackRequest
}

func (s *stubCallbackService) CallbackPath() string { return s.path }

func (s *stubCallbackService) CompleteCallback(_ context.Context, req core.CallbackRequest) core.CallbackRedirect {
	s.captured = &req
	return s.redirect
}

func TestCallbackHandler_RedirectsWithServiceLocation(t *testing.T) {
	svc := &stubCallbackService{
		path: "/auth/callback",
		redirect: core.CallbackRedirect{
			Location: "http://127.0.0.1:4096/settings?oauth=success",
			Success:  true,
		},
	}
	handler := NewCallbackHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1:4096/auth/callback?state=st-1&code=auth-code", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "http://127.0.0.1:4096/settings?oauth=success" {
		t.Fatalf("unexpected location %q", got)
	}
	if svc.captured == nil {
		t.Fatalf("expected callback to reach the service")
	}
	if svc.captured.State != "st-1" || svc.captured.Code != "auth-code" {
		t.Fatalf("unexpected callback payload: %#v", svc.captured)
	}
	if svc.captured.RequestBase != "http://127.0.0.1:4096" {
		t.Fatalf("unexpected request base %q", svc.captured.RequestBase)
	}
}

func TestCallbackHandler_ForwardsProviderError(t *testing.T) {
	svc := &stubCallbackService{
		path:     "/auth/callback",
		redirect: core.CallbackRedirect{Location: "/?oauth=error&message=denied"},
	}
	handler := NewCallbackHandler(svc)

	req := httptest.NewRequest(
		http.MethodGet,
		"http://localhost/auth/callback?error=access_denied&error_description=user+declined",
		nil,
	)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if svc.captured.ErrorCode != "access_denied" || svc.captured.ErrorDescription != "user declined" {
		t.Fatalf("unexpected error payload: %#v", svc.captured)
	}
}

func TestCallbackHandler_IgnoresOtherPathsAndMethods(t *testing.T) {
	svc := &stubCallbackService{path: "/auth/callback"}
	handler := NewCallbackHandler(svc)

	for name, req := range map[string]*http.Request{
		"wrong path":   httptest.NewRequest(http.MethodGet, "http://localhost/other", nil),
		"wrong method": httptest.NewRequest(http.MethodPost, "http://localhost/auth/callback", nil),
	} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", name, rec.Code)
		}
	}
	if svc.captured != nil {
		t.Fatalf("expected no service invocation")
	}
}

func TestRequestBase_HonorsForwardedProto(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://gateway.internal/auth/callback", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	if got := requestBase(req); got != "https://gateway.internal" {
		t.Fatalf("unexpected base %q", got)
	}
}

package inbound

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-connect/core"
)

// CallbackService is the slice of the orchestrator the responder needs.
type CallbackService interface {
	CallbackPath() string
	CompleteCallback(ctx context.Context, req core.CallbackRequest) core.CallbackRedirect
}

// CallbackHandler serves the fixed OAuth callback path. Every answer is a
// 302: success and failure are both expressed through the redirect target's
// query markers, so the provider-facing endpoint never renders a page.
type CallbackHandler struct {
	service CallbackService
}

func NewCallbackHandler(service CallbackService) *CallbackHandler {
	return &CallbackHandler{service: service}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet || r.URL.Path != h.service.CallbackPath() {
		http.NotFound(w, r)
		return
	}

	values := r.URL.Query()
	redirect := h.service.CompleteCallback(r.Context(), core.CallbackRequest{
		State:            values.Get("state"),
		Code:             values.Get("code"),
		ErrorCode:        values.Get("error"),
		ErrorDescription: values.Get("error_description"),
		RequestBase:      requestBase(r),
	})
	http.Redirect(w, r, redirect.Location, http.StatusFound)
}

// requestBase reconstructs the externally visible address the browser used,
// so the code exchange presents the same callback URL the authorization
// request carried.
func requestBase(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		scheme = forwarded
	}
	host := strings.TrimSpace(r.Host)
	if host == "" {
		return ""
	}
	return scheme + "://" + host
}

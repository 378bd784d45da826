package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

var (
	errTestWrite = errors.New("disk full")
	errTestStore = errors.New("store offline")
)

func oauthMethod(id string, start StartCapability, exchange ExchangeCapability) AuthMethod {
	return AuthMethod{
		ID:       id,
		Label:    "OAuth",
		Kind:     AuthKindOAuth,
		Start:    start,
		Exchange: exchange,
	}
}

func apiKeyMethod(id string) AuthMethod {
	return AuthMethod{ID: id, Label: "API Key", Kind: AuthKindAPIKey}
}

func staticProviders(providers ...ProviderDescriptor) ProviderSource {
	return ProviderSourceFunc(func(context.Context) ([]ProviderDescriptor, error) {
		return providers, nil
	})
}

type memoryProfileStore struct {
	mu       sync.Mutex
	saved    []CredentialProfile
	saveErr  error
	existErr error
}

func (s *memoryProfileStore) Save(_ context.Context, agentDir string, profile CredentialProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, profile)
	return nil
}

func (s *memoryProfileStore) Exists(_ context.Context, _ string, providerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existErr != nil {
		return false, s.existErr
	}
	for _, profile := range s.saved {
		if profile.ProviderID == providerID {
			return true, nil
		}
	}
	return false, nil
}

type memoryConfigStore struct {
	mu          sync.Mutex
	doc         map[string]any
	snapshotErr error
	validateFn  func(doc map[string]any) error
	writeErr    error
	written     []map[string]any
}

func newMemoryConfigStore(doc map[string]any) *memoryConfigStore {
	if doc == nil {
		doc = map[string]any{}
	}
	return &memoryConfigStore{doc: doc}
}

func (s *memoryConfigStore) Snapshot(context.Context) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotErr != nil {
		return nil, s.snapshotErr
	}
	return copyAnyMap(s.doc), nil
}

func (s *memoryConfigStore) Validate(_ context.Context, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validateFn != nil {
		return s.validateFn(doc)
	}
	return nil
}

func (s *memoryConfigStore) Write(_ context.Context, doc map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.doc = copyAnyMap(doc)
	s.written = append(s.written, doc)
	return nil
}

func (s *memoryConfigStore) lastWritten() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.written) == 0 {
		return nil
	}
	return s.written[len(s.written)-1]
}

func newTestService(t *testing.T, options ...Option) *Service {
	t.Helper()
	svc, err := NewService(Config{}, options...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func providerBlock(t *testing.T, doc map[string]any, providerID string) map[string]any {
	t.Helper()
	providersDoc, ok := doc["providers"].(map[string]any)
	if !ok {
		t.Fatalf("expected providers block, got %#v", doc)
	}
	block, ok := providersDoc[providerID].(map[string]any)
	if !ok {
		t.Fatalf("expected provider %q block, got %#v", providerID, providersDoc)
	}
	return block
}

func failingExchange(message string) ExchangeCapability {
	return func(context.Context, ExchangeRequest) (ExchangeResult, error) {
		return ExchangeResult{}, fmt.Errorf("%s", message)
	}
}

func mustContain(t *testing.T, haystack string, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}

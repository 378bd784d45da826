package core

import "strings"

// MatchProvider resolves a caller-supplied identifier against the live
// descriptor list: primary ids first, then alias lists, both normalized the
// same way. First match wins; ordering follows the input list.
func MatchProvider(providers []ProviderDescriptor, rawID string) (ProviderDescriptor, bool) {
	wanted := normalizeProviderID(rawID)
	if wanted == "" {
		return ProviderDescriptor{}, false
	}
	for _, provider := range providers {
		if normalizeProviderID(provider.ID) == wanted {
			return provider, true
		}
	}
	for _, provider := range providers {
		for _, alias := range provider.Aliases {
			if normalizeProviderID(alias) == wanted {
				return provider, true
			}
		}
	}
	return ProviderDescriptor{}, false
}

// PickMethod filters a provider's methods down to the requested kind set and
// returns the first match when no raw identifier is given; otherwise it
// matches by identifier and then by case-insensitive label.
func PickMethod(provider ProviderDescriptor, kinds []AuthKind, rawID string) (AuthMethod, bool) {
	matches := make([]AuthMethod, 0, len(provider.Methods))
	for _, method := range provider.Methods {
		if methodKindAllowed(method.Kind, kinds) {
			matches = append(matches, method)
		}
	}
	if len(matches) == 0 {
		return AuthMethod{}, false
	}

	wanted := strings.TrimSpace(rawID)
	if wanted == "" {
		return matches[0], true
	}
	for _, method := range matches {
		if strings.TrimSpace(method.ID) == wanted {
			return method, true
		}
	}
	for _, method := range matches {
		if strings.EqualFold(strings.TrimSpace(method.Label), wanted) {
			return method, true
		}
	}
	return AuthMethod{}, false
}

func methodKindAllowed(kind AuthKind, kinds []AuthKind) bool {
	for _, allowed := range kinds {
		if kind == allowed {
			return true
		}
	}
	return false
}

// normalizeProviderID trims, case-folds, and collapses separator variants so
// that "OpenAI", "open_ai", and "open-ai " all resolve identically.
func normalizeProviderID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = strings.ReplaceAll(id, "_", "-")
	id = strings.ReplaceAll(id, " ", "-")
	return id
}

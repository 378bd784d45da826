package configfile

// LegacyMigrator rewrites configuration documents written by earlier gateway
// releases into the current shape. Migration runs on the merged document
// right before validation, so a credential write is also the moment stale
// layouts get modernized.
type LegacyMigrator struct{}

func NewLegacyMigrator() LegacyMigrator { return LegacyMigrator{} }

// Migrate returns the migrated document and whether anything changed. The
// input is never mutated.
func (LegacyMigrator) Migrate(doc map[string]any) (map[string]any, bool) {
	if doc == nil {
		return nil, false
	}
	changed := false
	out := make(map[string]any, len(doc))
	for key, value := range doc {
		out[key] = value
	}

	// Early releases used a singular "provider" section.
	if legacy, ok := out["provider"].(map[string]any); ok {
		providers, _ := out["providers"].(map[string]any)
		merged := make(map[string]any, len(legacy)+len(providers))
		for id, block := range legacy {
			merged[id] = block
		}
		for id, block := range providers {
			merged[id] = block
		}
		out["providers"] = merged
		delete(out, "provider")
		changed = true
	}

	if providers, ok := out["providers"].(map[string]any); ok {
		migrated := make(map[string]any, len(providers))
		blocksChanged := false
		for id, raw := range providers {
			block, ok := raw.(map[string]any)
			if !ok {
				migrated[id] = raw
				continue
			}
			next, blockChanged := migrateProviderBlock(block)
			migrated[id] = next
			if blockChanged {
				blocksChanged = true
			}
		}
		if blocksChanged {
			out["providers"] = migrated
			changed = true
		}
	}

	if !changed {
		return doc, false
	}
	return out, true
}

var legacyBlockKeys = map[string]string{
	"apiKey":   "api_key",
	"authMode": "auth_mode",
	"baseUrl":  "base_url",
	"baseURL":  "base_url",
}

func migrateProviderBlock(block map[string]any) (map[string]any, bool) {
	changed := false
	out := make(map[string]any, len(block))
	for key, value := range block {
		if renamed, ok := legacyBlockKeys[key]; ok {
			// The modern key wins when both spellings are present.
			if _, exists := block[renamed]; !exists {
				out[renamed] = value
			}
			changed = true
			continue
		}
		out[key] = value
	}
	if !changed {
		return block, false
	}
	return out, true
}

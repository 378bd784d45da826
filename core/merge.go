package core

// MergePatch produces a new document containing every key of base overlaid by
// every key of patch. When both sides hold a plain record at the same key the
// merge recurses; any other pairing (arrays included) is replaced wholesale by
// the patch value. Neither input is mutated.
func MergePatch(base, patch map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(patch))
	for key, value := range base {
		merged[key] = value
	}
	for key, patchValue := range patch {
		baseRecord, baseIsRecord := merged[key].(map[string]any)
		patchRecord, patchIsRecord := patchValue.(map[string]any)
		if baseIsRecord && patchIsRecord {
			merged[key] = MergePatch(baseRecord, patchRecord)
			continue
		}
		merged[key] = patchValue
	}
	return merged
}

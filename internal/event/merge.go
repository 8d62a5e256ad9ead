package event

// Merge appends every incoming event whose (source, id) identity is not
// already present. Collisions keep the existing entry: a re-fetch of a
// known event never overwrites richer cached state with a possibly partial
// copy. The result is idempotent and, as a set of identities, commutative.
func Merge(existing, incoming []Unified) []Unified {
	if len(incoming) == 0 {
		return existing
	}

	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item.Identity()] = struct{}{}
	}

	merged := existing
	for _, item := range incoming {
		identity := item.Identity()
		if _, exists := seen[identity]; exists {
			continue
		}
		seen[identity] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}

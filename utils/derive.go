package utils

// TrustOrDerive returns the backend-supplied flag when one was sent,
// otherwise the locally derived fallback. The clamp, when non-nil, is
// applied last and wins over both, so an invariant can be enforced even
// against an inconsistent upstream flag.
func TrustOrDerive(raw *bool, derived bool, clamp func(bool) bool) bool {
	value := derived
	if raw != nil {
		value = *raw
	}
	if clamp != nil {
		value = clamp(value)
	}
	return value
}

package config

// SecretStringValue is what gets printed instead of the actual value.
const SecretStringValue = "<secret>"

// SecretString holds values which must never end up in logs, configuration
// dumps or debug reports (API tokens).
type SecretString string

// MarshalJSON hides the actual value.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML hides the actual value, so config.Dump is safe to store.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

// String implements fmt.Stringer so zap.Stringer and %v do not leak it either.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// Reveal returns the real value, to be used only where it is sent out.
func (s SecretString) Reveal() string {
	return string(s)
}

package config

// Secret is a string credential that redacts itself in every printed or
// serialized form. Only Value() yields the real content.
type Secret string

// String implements fmt.Stringer, hiding the value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString hides the value from %#v formatting too.
func (s Secret) GoString() string {
	return s.String()
}

// Value returns the actual secret.
func (s Secret) Value() string {
	return string(s)
}

// IsSet reports whether the secret is non-empty.
func (s Secret) IsSet() bool {
	return s != ""
}

// MarshalJSON serializes the redacted form, never the value.
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte(`""`), nil
	}
	return []byte(`"[REDACTED]"`), nil
}

// UnmarshalText accepts the raw value, so env and YAML loading work.
func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}

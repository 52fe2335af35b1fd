package enums

import "fmt"

// ProviderStatus reflects whether a provider can take on new work.
type ProviderStatus string

const (
	ProviderStatusIdle ProviderStatus = "idle"
	ProviderStatusBusy ProviderStatus = "busy"
)

var validProviderStatuses = []ProviderStatus{
	ProviderStatusIdle,
	ProviderStatusBusy,
}

// String implements fmt.Stringer.
func (p ProviderStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProviderStatus.
func (p ProviderStatus) IsValid() bool {
	for _, candidate := range validProviderStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProviderStatus converts raw input into a ProviderStatus.
func ParseProviderStatus(value string) (ProviderStatus, error) {
	for _, candidate := range validProviderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid provider status %q", value)
}

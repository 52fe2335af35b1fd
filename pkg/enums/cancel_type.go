package enums

import "fmt"

// CancelType categorizes a customer's cancellation request.
type CancelType string

const (
	CancelTypeScheduleConflict CancelType = "schedule_conflict"
	CancelTypeChangedMind      CancelType = "changed_mind"
	CancelTypePricing          CancelType = "pricing"
	CancelTypeProviderIssue    CancelType = "provider_issue"
	CancelTypeOther            CancelType = "other"
)

var validCancelTypes = []CancelType{
	CancelTypeScheduleConflict,
	CancelTypeChangedMind,
	CancelTypePricing,
	CancelTypeProviderIssue,
	CancelTypeOther,
}

// String implements fmt.Stringer.
func (c CancelType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CancelType.
func (c CancelType) IsValid() bool {
	for _, candidate := range validCancelTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// RequiresReason reports whether the type needs a free-text explanation.
func (c CancelType) RequiresReason() bool {
	return c == CancelTypeOther
}

// ParseCancelType converts raw input into a CancelType.
func ParseCancelType(value string) (CancelType, error) {
	for _, candidate := range validCancelTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancel type %q", value)
}

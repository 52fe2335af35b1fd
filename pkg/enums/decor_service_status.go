package enums

import "fmt"

// DecorServiceStatus reflects whether a decor service accepts bookings.
type DecorServiceStatus string

const (
	DecorServiceStatusAvailable   DecorServiceStatus = "available"
	DecorServiceStatusUnavailable DecorServiceStatus = "unavailable"
)

var validDecorServiceStatuses = []DecorServiceStatus{
	DecorServiceStatusAvailable,
	DecorServiceStatusUnavailable,
}

// String implements fmt.Stringer.
func (d DecorServiceStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DecorServiceStatus.
func (d DecorServiceStatus) IsValid() bool {
	for _, candidate := range validDecorServiceStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDecorServiceStatus converts raw input into a DecorServiceStatus.
func ParseDecorServiceStatus(value string) (DecorServiceStatus, error) {
	for _, candidate := range validDecorServiceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid decor service status %q", value)
}

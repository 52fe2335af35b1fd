package enums

import "fmt"

// BookingStatus tracks the lifecycle of a service booking.
type BookingStatus string

const (
	BookingStatusPending             BookingStatus = "pending"
	BookingStatusPlanning            BookingStatus = "planning"
	BookingStatusQuoting             BookingStatus = "quoting"
	BookingStatusContracting         BookingStatus = "contracting"
	BookingStatusConfirm             BookingStatus = "confirm"
	BookingStatusDepositPaid         BookingStatus = "deposit_paid"
	BookingStatusPreparing           BookingStatus = "preparing"
	BookingStatusInTransit           BookingStatus = "in_transit"
	BookingStatusProgressing         BookingStatus = "progressing"
	BookingStatusConstructionPayment BookingStatus = "construction_payment"
	BookingStatusCompleted           BookingStatus = "completed"
	BookingStatusPendingCancellation BookingStatus = "pending_cancellation"
	BookingStatusCanceled            BookingStatus = "canceled"
	BookingStatusRejected            BookingStatus = "rejected"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusPlanning,
	BookingStatusQuoting,
	BookingStatusContracting,
	BookingStatusConfirm,
	BookingStatusDepositPaid,
	BookingStatusPreparing,
	BookingStatusInTransit,
	BookingStatusProgressing,
	BookingStatusConstructionPayment,
	BookingStatusCompleted,
	BookingStatusPendingCancellation,
	BookingStatusCanceled,
	BookingStatusRejected,
}

// String implements fmt.Stringer.
func (b BookingStatus) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingStatus.
func (b BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status ends the booking lifecycle.
func (b BookingStatus) IsTerminal() bool {
	switch b {
	case BookingStatusCompleted, BookingStatusCanceled, BookingStatusRejected:
		return true
	default:
		return false
	}
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}

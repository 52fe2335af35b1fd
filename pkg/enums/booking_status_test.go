package enums

import "testing"

func TestBookingStatusTerminal(t *testing.T) {
	terminal := []BookingStatus{BookingStatusCompleted, BookingStatusCanceled, BookingStatusRejected}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("%s should be terminal", status)
		}
	}
	active := []BookingStatus{
		BookingStatusPending, BookingStatusPlanning, BookingStatusQuoting,
		BookingStatusContracting, BookingStatusConfirm, BookingStatusDepositPaid,
		BookingStatusPreparing, BookingStatusInTransit, BookingStatusProgressing,
		BookingStatusConstructionPayment, BookingStatusPendingCancellation,
	}
	for _, status := range active {
		if status.IsTerminal() {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestParseBookingStatus(t *testing.T) {
	status, err := ParseBookingStatus("deposit_paid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != BookingStatusDepositPaid {
		t.Fatalf("unexpected status %s", status)
	}
	if _, err := ParseBookingStatus("nonsense"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestCancelTypeRequiresReason(t *testing.T) {
	if !CancelTypeOther.RequiresReason() {
		t.Fatal("other must require a reason")
	}
	if CancelTypePricing.RequiresReason() {
		t.Fatal("pricing should not require a reason")
	}
}

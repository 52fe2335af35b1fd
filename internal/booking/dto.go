package booking

import (
	"time"

	"github.com/google/uuid"
)

// CreateInput is a customer's request for a new booking.
type CreateInput struct {
	CustomerID     uuid.UUID
	DecorServiceID uuid.UUID
	AddressID      uuid.UUID
	SurveyDate     time.Time
	Note           *string
}

// UpdateInput amends a booking that is still in its initial state. Nil
// fields are left untouched.
type UpdateInput struct {
	CustomerID  uuid.UUID
	BookingCode string
	AddressID   *uuid.UUID
	SurveyDate  *time.Time
	Note        *string
}

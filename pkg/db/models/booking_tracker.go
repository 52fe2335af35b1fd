package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/trongle278/seasondecorbe-sub000/pkg/enums"
)

// BookingTracker is the append-only audit trail of booking status changes.
type BookingTracker struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID uuid.UUID           `gorm:"column:booking_id;type:uuid;not null;index"`
	Status    enums.BookingStatus `gorm:"column:status;type:text;not null"`
	Note      *string             `gorm:"column:note"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}
